package mail

import "fmt"

// OrderConfirmationData fills the payment confirmation email.
type OrderConfirmationData struct {
	CustomerName string
	OrderNumber  string
	StoreName    string
	StoreURL     string
	Amount       float64
}

// DeploymentCompleteData fills the "your store is live" email.
type DeploymentCompleteData struct {
	StoreName string
	StoreURL  string
}

const emailStyle = `
	body { font-family: 'Inter', sans-serif; background: #0f172a; color: #f8fafc; padding: 20px; }
	.container { max-width: 600px; margin: 0 auto; background: #1e293b; border-radius: 16px; padding: 32px; }
	.header { text-align: center; margin-bottom: 24px; }
	.logo { color: #8b5cf6; font-size: 24px; font-weight: bold; }
	h1 { color: #f8fafc; font-size: 20px; }
	.details { background: #334155; padding: 16px; border-radius: 8px; margin: 16px 0; }
	.btn { display: inline-block; background: #8b5cf6; color: white; padding: 12px 24px; border-radius: 9999px; text-decoration: none; font-weight: 600; }
	.footer { text-align: center; color: #64748b; font-size: 12px; margin-top: 24px; }
`

// OrderConfirmationSubject and body for the post-payment email.
func OrderConfirmationSubject(orderNumber string) string {
	return fmt.Sprintf("Pesanan %s diterima - KEDAI", orderNumber)
}

func OrderConfirmationBody(data OrderConfirmationData) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><style>%s</style></head>
<body>
	<div class="container">
		<div class="header"><div class="logo">KEDAI</div></div>
		<h1>Terima kasih, %s!</h1>
		<p>Pembayaran anda telah berjaya. Kedai online anda sedang disediakan.</p>
		<div class="details">
			<p><strong>No. Pesanan:</strong> %s</p>
			<p><strong>Kedai:</strong> %s</p>
			<p><strong>Jumlah:</strong> RM %.2f</p>
		</div>
		<p style="text-align:center"><a class="btn" href="%s">Lihat Kedai Anda</a></p>
		<div class="footer">KEDAI - Bina kedai online anda dalam beberapa minit</div>
	</div>
</body>
</html>`, emailStyle, data.CustomerName, data.OrderNumber, data.StoreName, data.Amount, data.StoreURL)
}

// DeploymentCompleteSubject and body for the go-live email.
func DeploymentCompleteSubject(storeName string) string {
	return fmt.Sprintf("Kedai %s anda kini live! - KEDAI", storeName)
}

func DeploymentCompleteBody(data DeploymentCompleteData) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><style>%s</style></head>
<body>
	<div class="container">
		<div class="header"><div class="logo">KEDAI</div></div>
		<h1>Kedai anda kini live!</h1>
		<p>Kedai <strong>%s</strong> telah berjaya diterbitkan dan boleh dikongsi dengan pelanggan anda.</p>
		<p style="text-align:center"><a class="btn" href="%s">Buka %s</a></p>
		<div class="footer">KEDAI - Bina kedai online anda dalam beberapa minit</div>
	</div>
</body>
</html>`, emailStyle, data.StoreName, data.StoreURL, data.StoreURL)
}
