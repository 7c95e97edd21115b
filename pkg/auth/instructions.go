package auth

import (
	"fmt"
	"io"
	"strings"
)

// ShowTokenGuide writes step-by-step instructions for creating a Canvas
// access token
func ShowTokenGuide(w io.Writer) {
	fmt.Fprintln(w, strings.Repeat("=", 80))
	fmt.Fprintln(w, "📚 CANVAS ACCESS TOKEN GUIDE")
	fmt.Fprintln(w, strings.Repeat("=", 80))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "canvasdl reads your courses through the Canvas REST API.")
	fmt.Fprintln(w, "It needs the address of your Canvas instance and a personal access token.")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "🌐 STEP 1: Find your Canvas address")
	fmt.Fprintln(w, "   - Log in to Canvas in your browser")
	fmt.Fprintln(w, "   - Copy the address up to the first slash, e.g. https://canvas.school.edu")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "⚙️  STEP 2: Open your settings")
	fmt.Fprintln(w, "   - Click 'Account' in the left navigation, then 'Settings'")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "🔑 STEP 3: Create a token")
	fmt.Fprintln(w, "   - Scroll to 'Approved Integrations'")
	fmt.Fprintln(w, "   - Click '+ New Access Token'")
	fmt.Fprintln(w, "   - Enter a purpose such as 'canvasdl' and an optional expiry date")
	fmt.Fprintln(w, "   - Click 'Generate Token' and copy the value shown")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "💡 TIPS:")
	fmt.Fprintln(w, "   • Canvas shows the token only once")
	fmt.Fprintln(w, "   • Some schools disable token creation for students; ask your administrator")
	fmt.Fprintln(w, "   • You can revoke the token from the same settings page at any time")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "⚠️  SECURITY WARNING:")
	fmt.Fprintln(w, "   • The token acts as you in every course you are enrolled in")
	fmt.Fprintln(w, "   • NEVER share it with anyone")
	fmt.Fprintln(w, "   • 'canvasdl auth login' stores it in your keychain or an encrypted file")
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 80))
	fmt.Fprintln(w)
}

// ShowQuickTokenGuide writes a condensed version for experienced users
func ShowQuickTokenGuide(w io.Writer) {
	fmt.Fprintln(w, "\n🔑 Quick Guide: Canvas → Account → Settings → Approved Integrations → + New Access Token")
	fmt.Fprintln(w, "   Type 'help' for detailed instructions")
}
