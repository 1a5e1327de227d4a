// internal/model/cadence.go
package model

// Channel is the delivery medium for a cadence touch.
type Channel string

const (
	ChannelEmail     Channel = "email"
	ChannelSMS       Channel = "sms"
	ChannelVoiceCall Channel = "voice_call"
)

// Step is one scheduled touch in a cadence, shared read-only across all
// leads in a campaign. Subject is only used for email steps.
type Step struct {
	Day     int     `db:"day" json:"day"`
	Channel Channel `db:"channel" json:"channel"`
	Subject string  `db:"subject" json:"subject,omitempty"`
	Body    string  `db:"body" json:"body"`
}

// RefiCadence is the default multi-channel outreach sequence for
// refi-ready borrowers: days 0, 1, 3, 5, 7, 10.
func RefiCadence() []Step {
	return []Step{
		{
			Day:     0,
			Channel: ChannelEmail,
			Subject: "Great News About Your Mortgage Rate, {name}!",
			Body: "Hi {name},\n\n" +
				"I'm reaching out because market rates have dropped to {market_rate}% — " +
				"that's {rate_delta}% below your current rate of {current_rate}%. " +
				"On your ${loan_amount} loan, that could save you ${monthly_savings}/month.\n\n" +
				"I'd love to walk you through your refinance options. " +
				"Are you available for a quick 10-minute call this week?\n\n" +
				"Best,\n{originator}\nNMLS #{nmls}",
		},
		{
			Day:     1,
			Channel: ChannelSMS,
			Body: "Hi {name}, this is {originator}. " +
				"Rates just dropped to {market_rate}% — you could save ${monthly_savings}/mo " +
				"on your loan. Want me to run the numbers? Reply YES or call me anytime.",
		},
		{
			Day:     3,
			Channel: ChannelVoiceCall,
			Body: "Hello {name}, this is a courtesy call from {originator}. " +
				"I'm reaching out because current mortgage rates have dropped significantly below your existing rate. " +
				"Based on your loan, you could be saving over ${monthly_savings} per month. " +
				"I'd love to schedule a brief call to discuss your refinance options. " +
				"Press 1 to connect now, or we'll follow up by email.",
		},
		{
			Day:     5,
			Channel: ChannelSMS,
			Body: "Hi {name} — just following up. Rates are still favorable at {market_rate}%. " +
				"Your potential savings: ${monthly_savings}/mo. " +
				"I can send you a personalized rate quote — just reply GO. —{originator}",
		},
		{
			Day:     7,
			Channel: ChannelEmail,
			Subject: "Your Personalized Rate Analysis — {name}",
			Body: "Hi {name},\n\n" +
				"I wanted to follow up one more time with your personalized refinance analysis:\n\n" +
				"  Current Rate: {current_rate}%\n" +
				"  Today's Rate: {market_rate}%\n" +
				"  Monthly Savings: ${monthly_savings}\n" +
				"  Loan Amount: ${loan_amount}\n\n" +
				"If you're interested, I can have everything prepped for a no-obligation consultation. " +
				"Just reply to this email or call me directly.\n\n" +
				"{originator} | NMLS #{nmls}",
		},
		{
			Day:     10,
			Channel: ChannelVoiceCall,
			Body: "Hi {name}, this is a follow-up from {originator}. " +
				"I wanted to check in one last time about the rate improvement opportunity on your mortgage. " +
				"Rates have been moving and I want to make sure you don't miss this window. " +
				"Press 1 to speak with me directly.",
		},
	}
}

// FirstStepDay returns the lowest day in the cadence. Steps are kept
// sorted ascending, so this is the first element.
func FirstStepDay(cadence []Step) int {
	if len(cadence) == 0 {
		return 0
	}
	return cadence[0].Day
}

// StepForDay returns the step whose day matches exactly, or nil.
func StepForDay(cadence []Step, day int) *Step {
	for i := range cadence {
		if cadence[i].Day == day {
			return &cadence[i]
		}
	}
	return nil
}

// NextStepDay returns the smallest day strictly greater than the given
// day, and whether one exists.
func NextStepDay(cadence []Step, day int) (int, bool) {
	for i := range cadence {
		if cadence[i].Day > day {
			return cadence[i].Day, true
		}
	}
	return 0, false
}
