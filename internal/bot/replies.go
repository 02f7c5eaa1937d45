// ABOUTME: Canned reply pools and reply formatting for the assistant
// ABOUTME: All user-visible assistant copy lives here, nowhere else

package bot

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/roamly/roam-gateway/internal/session"
)

const (
	emptyInputReply = "Please type a message so I can help you."
	errorReply      = "Something went wrong on my end. Please try that again."
	deflectionReply = "I specialize in tours and travel plans. Ask me to find tours in a city you'd like to visit!"
	feedbackThanks  = "Thanks for the feedback, it helps me improve!"
)

var greetingReplies = []string{
	"Hi there! Looking for your next tour?",
	"Hello! Tell me a city and I'll find tours for you.",
	"Hey! Ready to plan something? Ask me about tours anywhere.",
}

var farewellReplies = []string{
	"Safe travels! Come back any time.",
	"Goodbye! I'll be here when you plan your next trip.",
	"Bye for now, happy touring!",
}

var thanksReplies = []string{
	"You're welcome!",
	"Any time, that's what I'm here for.",
	"Glad I could help!",
}

var helpReplies = []string{
	"I can find tours for you. Try \"food tours in Lisbon\" or \"show me tour 2\" after a search.",
	"Ask me things like \"walking tours in Rome\" or \"tours under $50\". After a search, reply with a number for details.",
}

func pick(pool []string) string {
	return pool[rand.IntN(len(pool))]
}

// noResultsReply suggests a next step tailored to whatever city the user was
// talking about, if any.
func noResultsReply(city string) string {
	if city != "" {
		return fmt.Sprintf("I couldn't find any tours matching that in %s. Try a different activity, or ask about another city.", city)
	}
	return "I couldn't find any tours matching that. Try naming a city, like \"food tours in Barcelona\"."
}

func invalidSelectionReply(count int) string {
	if count == 1 {
		return "There's only 1 tour in the last list. Reply with 1 to see it."
	}
	return fmt.Sprintf("Please pick a number between 1 and %d from the last list.", count)
}

const noListReply = "I don't have a tour list open right now. Search for tours first, then pick one by number."

func formatDetailReply(t session.TourResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)\n", t.Title, t.City)
	if t.Price != "" {
		fmt.Fprintf(&b, "Price: %s\n", t.Price)
	}
	if t.Duration != "" {
		fmt.Fprintf(&b, "Duration: %s\n", t.Duration)
	}
	if t.Summary != "" {
		b.WriteString(t.Summary)
	}
	return strings.TrimRight(b.String(), "\n")
}

// formatSearchReply renders the numbered result list the follow-up selection
// indexes into. viaPhrase prefixes a note when the training-phrase fallback,
// not the rule stages, classified the query.
func formatSearchReply(results []session.TourResult, city string, viaPhrase bool) string {
	var b strings.Builder
	if viaPhrase {
		b.WriteString("Sounds like you're after tours. ")
	}
	if city != "" {
		fmt.Fprintf(&b, "Here's what I found for %s:\n", city)
	} else {
		b.WriteString("Here's what I found:\n")
	}
	for i, t := range results {
		fmt.Fprintf(&b, "%d. %s (%s) - %s, %s\n", i+1, t.Title, t.City, t.Price, t.Duration)
	}
	b.WriteString("Reply with a number for details.")
	return b.String()
}
