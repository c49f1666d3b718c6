package secrets

// Messages holds the user-facing strings for one secret kind's reset flow.
// Commands override individual fields; zero-value fields fall back to the
// defaults at use time.
type Messages struct {
	ManualResetWarning      string
	ManualResetQuestion     string
	ReplaceExistingWarning  string
	ReplaceExistingQuestion string
	PromptEnterValue        string
	PromptConfirmValue      string
	PromptValuesNoMatch     string
	WasUpdated              string
	WasNotUpdated           string

	CheckFailedMinLength       string
	CheckFailedRequiresNumber  string
	CheckFailedRequiresLetter  string
	CheckFailedEntirelyNumeric string
	CheckFailedBlocked         string
	CheckFailedTooSimilar      string
}

// DefaultMessages are generic enough if no customization is desired.
func DefaultMessages() Messages {
	return Messages{
		ManualResetWarning: "You should only manually reset this secret if you " +
			"understand how it is used, and you are addressing a specific issue. " +
			"We strongly recommend using the automatically generated value for " +
			"this secret instead of manually entering one.",
		ManualResetQuestion:     "Are you sure you want to manually reset this secret?",
		ReplaceExistingWarning:  "This secret already exists. Resetting it to a new value may result in data loss.",
		ReplaceExistingQuestion: "Are you sure you want to replace the existing secret?",
		PromptEnterValue:        "Enter new secret value: ",
		PromptConfirmValue:      "Confirm new secret value: ",
		PromptValuesNoMatch:     "Your inputs do not match.",
		WasUpdated:              "This secret was successfully updated.",
		WasNotUpdated:           "This secret was not updated.",

		CheckFailedMinLength:       "The value for this secret must be at least %d characters long.",
		CheckFailedRequiresNumber:  "The value for this secret must contain a number.",
		CheckFailedRequiresLetter:  "The value for this secret must contain a letter.",
		CheckFailedEntirelyNumeric: "The value for this secret cannot be entirely numeric.",
		CheckFailedBlocked:         "The value you provided cannot be used because it is blocked.",
		CheckFailedTooSimilar:      "The value you provided is too similar to another secret's value.",
	}
}

// withDefaults fills any empty message fields from the defaults.
func (m Messages) withDefaults() Messages {
	defaults := DefaultMessages()
	fill := func(value *string, fallback string) {
		if *value == "" {
			*value = fallback
		}
	}
	fill(&m.ManualResetWarning, defaults.ManualResetWarning)
	fill(&m.ManualResetQuestion, defaults.ManualResetQuestion)
	fill(&m.ReplaceExistingWarning, defaults.ReplaceExistingWarning)
	fill(&m.ReplaceExistingQuestion, defaults.ReplaceExistingQuestion)
	fill(&m.PromptEnterValue, defaults.PromptEnterValue)
	fill(&m.PromptConfirmValue, defaults.PromptConfirmValue)
	fill(&m.PromptValuesNoMatch, defaults.PromptValuesNoMatch)
	fill(&m.WasUpdated, defaults.WasUpdated)
	fill(&m.WasNotUpdated, defaults.WasNotUpdated)
	fill(&m.CheckFailedMinLength, defaults.CheckFailedMinLength)
	fill(&m.CheckFailedRequiresNumber, defaults.CheckFailedRequiresNumber)
	fill(&m.CheckFailedRequiresLetter, defaults.CheckFailedRequiresLetter)
	fill(&m.CheckFailedEntirelyNumeric, defaults.CheckFailedEntirelyNumeric)
	fill(&m.CheckFailedBlocked, defaults.CheckFailedBlocked)
	fill(&m.CheckFailedTooSimilar, defaults.CheckFailedTooSimilar)
	return m
}
