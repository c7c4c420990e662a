package domain

import "strings"

// NamePlaceholder is the token every template carries where the submitter's
// name belongs.
const NamePlaceholder = "[NAME]"

// ReplacePlaceholder replaces every exact-case occurrence of token in text.
func ReplacePlaceholder(text, token, value string) string {
	if token == "" {
		return text
	}
	return strings.ReplaceAll(text, token, value)
}

func CopyTitle(name string, a Archetype) string {
	return name + " - " + string(a)
}

func UploadFilename(name string, a Archetype) string {
	return name + " - Ergebnis - " + string(a) + ".pdf"
}

func AttachmentFilename(name string) string {
	return name + "_Archetyp_Analyse.pdf"
}
