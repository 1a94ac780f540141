package picker

import "strings"

// consentView renders the read-contacts access dialog.
func consentView(appName string) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Allow " + appName + " to read your contacts?"))
	b.WriteString("\n\n  Your address book is read once, to list and search")
	b.WriteString("\n  contacts. Nothing is copied or sent anywhere.")
	b.WriteString("\n\n  [Enter] Allow   [Esc] Deny")
	return DialogBorder().Render(b.String())
}
