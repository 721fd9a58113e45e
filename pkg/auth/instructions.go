package auth

import (
	"fmt"
	"io"
	"strings"
)

// ShowLoginGuide explains how the scraper logs in and where credentials come from
func ShowLoginGuide(w io.Writer) {
	rule := strings.Repeat("=", 72)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "🔐 THREADS LOGIN")
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "The saved-posts page is only visible to a logged-in account.")
	fmt.Fprintln(w, "If the browser profile is already logged in, nothing is needed.")
	fmt.Fprintln(w, "Otherwise the login form is filled from, in order:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "   1. auth.username / auth.password in the config file")
	fmt.Fprintln(w, "   2. THREADS_ID / THREADS_PASSWORD in the environment or .env")
	fmt.Fprintln(w, "   3. an account saved with 'threadscraper auth login'")
	fmt.Fprintln(w, "   4. an interactive prompt")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "💡 TIPS:")
	fmt.Fprintln(w, "   • A verification code is requested on the terminal when the site asks for one")
	fmt.Fprintln(w, "   • Enable notifications to be alerted when that happens")
	fmt.Fprintln(w, "   • Saved passwords go to the system keychain or an encrypted file;")
	fmt.Fprintf(w, "     set %s to choose the file passphrase yourself\n", passphraseEnv)
	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
}
