package workflow

const (
	msgPaymentApproved = "✅ *Pago aprobado.* Aquí tienes tu eSIM:"
	msgAssetCaption    = "📲 Escanea el QR para instalar tu eSIM."
	msgFollowUp        = "🧾 *Nota:* Pregunta disponibilidad antes de pagar.\n\n¿Necesitas ayuda con la instalación? Presiona *Soporte*."
	msgOutOfStock      = "✅ Pago aprobado, pero *no hay stock* disponible. Te contacto para entregarte."
)
