package checkout

import (
	"html/template"
)

var page = template.Must(template.New("checkout").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Name}} checkout</title>
<script src="{{.ScriptURL}}"></script>
</head>
<body>
<p id="status">Opening checkout for {{.Description}}...</p>
<script>
(function () {
  var done = false;
  function post(event, payload) {
    if (done) { return; }
    done = true;
    var body = Object.assign({event: event}, payload || {});
    fetch({{.CallbackPath}}, {
      method: "POST",
      headers: {"Content-Type": "application/json"},
      body: JSON.stringify(body)
    }).then(function () {
      document.getElementById("status").textContent = "You can close this window and return to the terminal.";
    });
  }
  var rzp = new Razorpay({
    key: {{.Key}},
    amount: {{.Amount}},
    currency: {{.Currency}},
    name: {{.Name}},
    description: {{.Description}},
    order_id: {{.OrderID}},
    handler: function (resp) { post("success", resp); },
    modal: { ondismiss: function () { post("dismissed"); } }
  });
  rzp.on("payment.failed", function (resp) { post("failed", {error: resp.error}); });
  rzp.open();
})();
</script>
</body>
</html>
`))

type pageData struct {
	Request
	ScriptURL    string
	CallbackPath string
}
