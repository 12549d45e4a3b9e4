package router

import (
	"strings"

	"github.com/papercomputeco/kotori/pkg/cascade"
	"github.com/papercomputeco/kotori/pkg/dialogue"
)

var greetingTokens = []string{"hi", "hello", "hey", "good morning", "good afternoon", "good evening"}

// addressTokens may precede the agent's name anywhere in the input.
var addressTokens = []string{"hi", "hello", "hey"}

// greetingRules matches lower-cased, trimmed input.
func greetingRules(agentName string) cascade.Table[dialogue.Intent] {
	name := strings.ToLower(strings.TrimSpace(agentName))

	rules := cascade.Table[dialogue.Intent]{
		{
			Name: "greeting",
			Match: func(s string) bool {
				for _, t := range greetingTokens {
					if s == t || strings.HasPrefix(s, t+" ") || strings.HasSuffix(s, " "+t) {
						return true
					}
				}
				return false
			},
			Result: dialogue.IntentWelcome,
		},
	}

	if name != "" {
		addressed := make([]string, len(addressTokens))
		for i, t := range addressTokens {
			addressed[i] = t + " " + name
		}
		rules = append(rules, cascade.Keywords("addressed", dialogue.IntentWelcome, addressed...))
	}
	return rules
}

// followUpRules catch the closing menu options every answer ends with.
var followUpRules = cascade.Table[dialogue.Intent]{
	cascade.Keywords("know_more", dialogue.IntentQnA,
		"know more about empty nest", "tell me about empty nest"),
	cascade.Keywords("feeling", dialogue.IntentEmotional,
		"tell me how you are feeling", "how i am feeling", "how i feel"),
	cascade.Keywords("activities", dialogue.IntentSuggestion,
		"suggest activities", "activities to help", "help me cope"),
}

// keywordRules classify when the model is unavailable or its answer is
// unusable. Emotional content is checked first.
var keywordRules = cascade.Table[dialogue.Intent]{
	cascade.Keywords("emotional", dialogue.IntentEmotional,
		"feel", "feeling", "sad", "lonely", "depressed", "upset", "cry", "crying",
		"miss", "missing", "empty", "hurt", "hurting", "alone", "abandoned",
		"lost", "grief", "mourn", "devastated", "heartbroken", "anxious",
		"worried", "scared", "afraid", "overwhelmed", "helpless"),
	cascade.Keywords("suggestion", dialogue.IntentSuggestion,
		"suggest", "suggestion", "recommend", "recommendation", "help me",
		"what can i do", "what should i do", "how to", "ways to", "tips",
		"advice", "ideas", "activities", "hobbies", "cope", "coping",
		"deal with", "handle", "manage", "overcome"),
	cascade.Keywords("qna", dialogue.IntentQnA,
		"what is", "what are", "explain", "define", "tell me about",
		"how does", "why", "when", "where", "who", "definition",
		"meaning", "understand", "learn", "know about"),
}

// errorKeywordRules are the narrower sets used after the model call itself
// failed.
var errorKeywordRules = cascade.Table[dialogue.Intent]{
	cascade.Keywords("emotional", dialogue.IntentEmotional,
		"feel", "sad", "lonely", "depressed", "upset", "miss", "hurt", "alone"),
	cascade.Keywords("suggestion", dialogue.IntentSuggestion,
		"suggest", "recommend", "help me", "ways to", "tips", "advice", "what can i do"),
}

// answerRules parse the model's one-word label. Emotional wins when the
// answer mentions several labels.
var answerRules = cascade.Table[dialogue.Intent]{
	cascade.Keywords("emotional", dialogue.IntentEmotional, "emotional"),
	cascade.Keywords("suggestion", dialogue.IntentSuggestion, "suggestion"),
	cascade.Keywords("qna", dialogue.IntentQnA, "qna"),
}
