package services

import "strings"

// allowedUsernameCharacters is the allow-list a stored username is reduced
// to. Anything outside it is stripped after spaces become underscores.
const allowedUsernameCharacters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-._@+"

// DeriveUsername returns the sanitized username, falling back to the email
// local-part when none was supplied.
func DeriveUsername(username, email string) string {
	if username == "" {
		username = strings.Split(email, "@")[0]
	}
	return SanitizeUsername(username)
}

// SanitizeUsername replaces spaces with underscores, then removes every
// character outside the allow-list.
func SanitizeUsername(username string) string {
	replaced := strings.ReplaceAll(username, " ", "_")

	var b strings.Builder
	b.Grow(len(replaced))
	for _, c := range replaced {
		if strings.ContainsRune(allowedUsernameCharacters, c) {
			b.WriteRune(c)
		}
	}
	return b.String()
}
