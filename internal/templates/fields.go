package templates

// Field describes one input of the churn form. The Name is sent to the
// prediction backend as the JSON key.
type Field struct {
	Name    string
	Label   string
	Type    string // "select" or "number"
	Options []string
	Step    string
}

var (
	yesNo       = []string{"Yes", "No"}
	phoneExtra  = []string{"Yes", "No", "No phone service"}
	internetAdd = []string{"Yes", "No", "No internet service"}
)

// ChurnFields are the customer attributes the churn model was trained on.
var ChurnFields = []Field{
	{Name: "gender", Label: "Gender", Type: "select", Options: []string{"Female", "Male"}},
	{Name: "SeniorCitizen", Label: "Senior Citizen", Type: "select", Options: []string{"0", "1"}},
	{Name: "Partner", Label: "Partner", Type: "select", Options: yesNo},
	{Name: "Dependents", Label: "Dependents", Type: "select", Options: yesNo},
	{Name: "tenure", Label: "Tenure (months)", Type: "number", Step: "1"},
	{Name: "PhoneService", Label: "Phone Service", Type: "select", Options: yesNo},
	{Name: "MultipleLines", Label: "Multiple Lines", Type: "select", Options: phoneExtra},
	{Name: "InternetService", Label: "Internet Service", Type: "select", Options: []string{"DSL", "Fiber optic", "No"}},
	{Name: "OnlineSecurity", Label: "Online Security", Type: "select", Options: internetAdd},
	{Name: "OnlineBackup", Label: "Online Backup", Type: "select", Options: internetAdd},
	{Name: "DeviceProtection", Label: "Device Protection", Type: "select", Options: internetAdd},
	{Name: "TechSupport", Label: "Tech Support", Type: "select", Options: internetAdd},
	{Name: "StreamingTV", Label: "Streaming TV", Type: "select", Options: internetAdd},
	{Name: "StreamingMovies", Label: "Streaming Movies", Type: "select", Options: internetAdd},
	{Name: "Contract", Label: "Contract", Type: "select", Options: []string{"Month-to-month", "One year", "Two year"}},
	{Name: "PaperlessBilling", Label: "Paperless Billing", Type: "select", Options: yesNo},
	{Name: "PaymentMethod", Label: "Payment Method", Type: "select", Options: []string{
		"Electronic check", "Mailed check", "Bank transfer (automatic)", "Credit card (automatic)",
	}},
	{Name: "MonthlyCharges", Label: "Monthly Charges", Type: "number", Step: "0.01"},
	{Name: "TotalCharges", Label: "Total Charges", Type: "number", Step: "0.01"},
}
