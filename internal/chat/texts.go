package chat

import (
	"fmt"

	"rollcall/internal/presentation"
	"rollcall/internal/registration"
)

// WelcomeText is the opening bot message, shown before any user turn.
func WelcomeText() string {
	return `👋 **Welcome to the Registration System!**

I can help you with:

🆕 **Registration**
• Type **'register'** to start a new registration

📋 **View Data**
• Type **'show registrations'** to view all registered users
• Type **'statistics'** to see registration statistics
• Type **'search [query]'** to search by name or email

❓ **Help**
• Type **'help'** to see all available commands

What would you like to do?`
}

// HelpText lists every command, the registration steps, and usage tips.
func HelpText() string {
	return `🤖 **Registration Chatbot Help**

**📝 Registration Commands:**
• ` + "`register`" + ` or ` + "`start registration`" + ` - Begin new user registration
• Reply **'confirm'** at the confirmation step to save, anything else to cancel

**📋 Data Commands:**
• ` + "`show registrations`" + ` or ` + "`list registrations`" + ` - View all registered users
• ` + "`search [query]`" + ` - Search by name or email (e.g., "search john" or "search @gmail")
• ` + "`statistics`" + ` or ` + "`stats`" + ` - View registration statistics

**❓ General Commands:**
• ` + "`help`" + ` or ` + "`commands`" + ` - Show this help message

**🔄 Registration Process:**
1. **Name** - Provide your full name (2+ characters)
2. **Email** - Enter a valid email address
3. **Date of Birth** - Enter in YYYY-MM-DD format (e.g., 1990-05-15)
4. **Confirmation** - Review your details and reply 'confirm'

**💡 Tips:**
• All data is stored locally in a CSV file
• Email addresses must be unique
• Commands are only recognized between registrations

What would you like to do?`
}

const (
	startText = "Great! Let's start your registration. 📝\n\nWhat's your full name?"

	emailRetryText = "Please enter a valid email address.\n\n**Format:** user@example.com"

	dobPromptText = "Perfect! 📧\n\nNow please enter your date of birth.\n\n**Format:** YYYY-MM-DD (e.g., 1990-05-15)"

	unknownText = "I didn't understand that. 🤔\n\nType **'help'** to see available commands or **'register'** to start a new registration."

	cancelledText = "Registration cancelled. 🔄\n\nType **'register'** to start again or **'help'** to see available commands."
)

func emailPromptText(name string) string {
	return fmt.Sprintf("Nice to meet you, **%s**! 👋\n\nNow, please provide your email address:", name)
}

func nameRetryText(fe *registration.FieldError) string {
	return "Please enter a valid name. " + presentation.UpperFirst(fe.Message) + "."
}

func dobRetryText(fe *registration.FieldError) string {
	return "Please enter a valid date of birth. " + presentation.UpperFirst(fe.Message) +
		".\n\n**Format:** YYYY-MM-DD (e.g., 1990-05-15)"
}

func completedText(rec registration.Record) string {
	return "🎉 **Registration Completed Successfully!**\n\n" +
		presentation.RegistrationSuccess(rec) +
		"\n\n**What's next?**\n" +
		"• Type **'register'** for a new registration\n" +
		"• Type **'show registrations'** to view all users\n" +
		"• Type **'statistics'** to view registration stats"
}

func duplicateText(email string) string {
	return fmt.Sprintf(
		"❌ **Registration Failed**\n\nThe email **%s** is already registered.\n\nPlease provide a different email address:",
		email)
}

func commitFailureText(detail string) string {
	return "❌ **Registration Failed**\n\n" + detail +
		"\n\nType **'confirm'** to try again, or anything else to cancel."
}

func ioFailureText(err error) string {
	return fmt.Sprintf(
		"⚠️ **Could not save your registration:** %s\n\nYour details are unchanged. Type **'confirm'** to try again, or anything else to cancel.",
		err)
}

func listErrorText(err error) string {
	return fmt.Sprintf("❌ **Error:** %s", err)
}

func searchErrorText(err error) string {
	return fmt.Sprintf("❌ **Search Error:** %s", err)
}

func statsErrorText(err error) string {
	return fmt.Sprintf("❌ **Statistics Error:** %s", err)
}
