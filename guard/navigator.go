package guard

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// PromptNavigator is the command line navigator: it cannot open pages, so it
// tells the user where to sign in and remembers the last target.
type PromptNavigator struct {
	mu       sync.Mutex
	out      io.Writer
	location string
	last     string
}

func NewPromptNavigator(out io.Writer) *PromptNavigator {
	return &PromptNavigator{out: out, location: "/"}
}

// SetLocation records the path and query of the command being run.
func (n *PromptNavigator) SetLocation(location string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.location = location
}

func (n *PromptNavigator) Location() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.location
}

// Navigate prints target. Login targets carry a reason and get the sign-in
// hint; anything else is a page of the web app.
func (n *PromptNavigator) Navigate(target string) {
	n.mu.Lock()
	n.last = target
	n.mu.Unlock()
	if strings.Contains(target, "reason=") {
		fmt.Fprintf(n.out, "Sign in at %s\nthen run: eventspot login\n", target)
		return
	}
	fmt.Fprintf(n.out, "Continue at %s\n", target)
}

// Last returns the most recent navigation target.
func (n *PromptNavigator) Last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.last
}
