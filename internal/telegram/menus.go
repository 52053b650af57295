package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	dataMenu    = "MENU"
	dataMXMenu  = "MX_MENU"
	dataUSAMenu = "USA_MENU"
	dataHours   = "HORARIO"
	dataWA      = "WA"
	dataSupport = "SOPORTE"
	dataUnlock  = "LIB"
	dataBug     = "BUG"

	payPrefix = "PAY:"
)

const (
	textMainMenu   = "📲 *eSIM Global Store*\n\nElige una opción:"
	textMXMenu     = "🇲🇽 *eSIM México*\nElige tu LADA:"
	textUSAMenu    = "🇺🇸 *eSIM USA*\nElige compañía:"
	textHours      = "🕒 Horario: *8:00am a 1:00am*"
	textWA         = "📲 WhatsApp: *5640025348*"
	textSupport    = "🧑‍💻 Soporte:\nMándame captura + modelo de iPhone/Android y tu duda."
	textUnlock     = "🔓 Liberaciones: *próximamente*."
	textBug        = "🧩 eSIM Bug: *próximamente*."
	textInvalidSKU = "SKU inválido."
	textPayLink    = "💳 Listo. Paga aquí y se confirma automático:"
	textPayFailed  = "⚠️ No pude generar el link de pago. Intenta de nuevo en unos minutos."
)

// summaryTitles are the display names shown on the selection summary.
var summaryTitles = map[string]string{
	"MX_ATT_56_100":    "🇲🇽 AT&T México — CDMX (56)",
	"MX_ATT_OTHER_150": "🇲🇽 AT&T México — Otras LADAS",
	"USA_ATT_200":      "🇺🇸 AT&T USA",
	"USA_TMO_200":      "🇺🇸 T-Mobile",
}

func backRow() []tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("↩️ Volver al menú", dataMenu))
}

func dataRow(text, data string) []tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(text, data))
}

func mainMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		dataRow("🇲🇽 eSIM México", dataMXMenu),
		dataRow("🇺🇸 eSIM USA", dataUSAMenu),
		dataRow("🧩 eSIM Bug", dataBug),
		dataRow("🧑‍💻 Soporte", dataSupport),
		dataRow("📲 WhatsApp 5640025348", dataWA),
		dataRow("🕒 Horario 8am–1am", dataHours),
		dataRow("🔓 Liberaciones (próximamente)", dataUnlock),
	)
}

func mxMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		dataRow("CDMX (56) — $100 con saldo", "MX_ATT_56_100"),
		dataRow("Otras LADAS — $150 con saldo", "MX_ATT_OTHER_150"),
		backRow(),
	)
}

func usaMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		dataRow("AT&T USA — $200 con saldo", "USA_ATT_200"),
		dataRow("T-Mobile — $200 con saldo", "USA_TMO_200"),
		backRow(),
	)
}

func summaryText(title, price string) string {
	return fmt.Sprintf("✅ *Selección:*\n%s\n\n💰 *Total:* $%s\n\n🧾 *Esta eSIM incluye saldo.*\n\nPresiona *Pagar* para continuar.", title, price)
}

func summaryKeyboard(sku string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		dataRow("💳 Pagar", payPrefix+sku),
		backRow(),
	)
}

func payKeyboard(link string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonURL("✅ Pagar ahora", link)),
		backRow(),
	)
}
