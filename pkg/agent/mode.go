// Package agent generates responses for each conversational mode and the
// welcome greeting.
package agent

import (
	"github.com/papercomputeco/kotori/pkg/cascade"
	"github.com/papercomputeco/kotori/pkg/memory"
)

// Mode is the tuning of one generator.
type Mode struct {
	// Type tags saved memories and names the mode in logs.
	Type memory.Type

	// Template holds {context} and {question} placeholders.
	Template string

	// Scaffold is the trailing template label stripped from answers.
	Scaffold string

	Temperature float64
	MaxTokens   int

	// ContextCap bounds the assembled context in bytes.
	ContextCap int

	// MinLength is the shortest acceptable answer in characters.
	MinLength int

	ReferenceK int
	MemoryK    int

	// RepairIntro prefixes an answer that had to be wrapped as a bullet.
	RepairIntro string

	// Validation answers replace empty or short completions.
	Validation        cascade.Table[string]
	ValidationDefault string

	// Errors answer when the model call fails.
	Errors       cascade.Table[string]
	ErrorDefault string
}

// ValidationAnswer picks the canned answer for a low-quality completion.
func (m Mode) ValidationAnswer(lowerQuery string) string {
	return m.Validation.EvaluateOr(lowerQuery, m.ValidationDefault)
}

// ErrorAnswer picks the canned answer for a failed model call.
func (m Mode) ErrorAnswer(lowerQuery string) string {
	return m.Errors.EvaluateOr(lowerQuery, m.ErrorDefault)
}

// QnA answers factual questions about empty nest syndrome.
var QnA = Mode{
	Type: memory.TypeQnA,
	Template: `You are Kotori, a caring assistant who helps people understand Empty Nest Syndrome.

Provide a clear, concise answer using ONLY simple sentences. Use no more than 3 bullet points with good spacing between them. End with an engaging follow-up question.

Format your response exactly like this:
• [First key point in 1 simple sentence]

• [Second key point in 1 simple sentence]

• [Third key point in 1 simple sentence]

[Ask a simple follow-up question to continue the conversation]

**Context:**
{context}

**Question:** {question}

**Answer:**`,
	Scaffold:          "**Answer:**",
	Temperature:       0.3,
	MaxTokens:         200,
	ContextCap:        4000,
	MinLength:         20,
	ReferenceK:        3,
	MemoryK:           2,
	Validation:        qnaValidation,
	ValidationDefault: qnaValidationDefault,
	Errors:            qnaError,
	ErrorDefault:      qnaErrorDefault,
}

// Emotional offers validation and comfort.
var Emotional = Mode{
	Type: memory.TypeEmotional,
	Template: `You are Kotori, a compassionate assistant helping with Empty Nest Syndrome.

Provide warm, supportive response using ONLY simple sentences. Use no more than 3 bullet points with good spacing between them. End with options for what to do next.

Format your response exactly like this:
• [Validate their feelings in 1 simple sentence]

• [Offer comfort or reassurance in 1 simple sentence]

• [Provide gentle encouragement in 1 simple sentence]

` + Menu + `

**Context:**
{context}

**User's Message:** {question}

**Supportive Response:**`,
	Scaffold:          "**Supportive Response:**",
	Temperature:       0.4,
	MaxTokens:         200,
	ContextCap:        3000,
	MinLength:         20,
	ReferenceK:        2,
	MemoryK:           2,
	RepairIntro:       "I understand you're going through a difficult time.",
	Validation:        emotionalValidation,
	ValidationDefault: emotionalValidationDefault,
	Errors:            emotionalError,
	ErrorDefault:      emotionalErrorDefault,
}

// Suggestion proposes practical activities.
var Suggestion = Mode{
	Type: memory.TypeSuggestion,
	Template: `You are Kotori, helping people navigate life after Empty Nest Syndrome.

Provide practical suggestions using ONLY simple sentences. Use no more than 3 bullet points with good spacing between them. End with options for what to do next.

Format your response exactly like this:
• [First practical suggestion in 1 simple sentence]

• [Second practical suggestion in 1 simple sentence]

• [Third practical suggestion in 1 simple sentence]

` + Menu + `

**Context:**
{context}

**User's Request:** {question}

**Helpful Suggestions:**`,
	Scaffold:          "**Helpful Suggestions:**",
	Temperature:       0.5,
	MaxTokens:         200,
	ContextCap:        3500,
	MinLength:         30,
	ReferenceK:        3,
	MemoryK:           2,
	Validation:        suggestionValidation,
	ValidationDefault: suggestionValidationDefault,
	Errors:            suggestionError,
	ErrorDefault:      suggestionErrorDefault,
}

// scaffolds are stripped from every answer regardless of mode.
var scaffolds = []string{QnA.Scaffold, Emotional.Scaffold, Suggestion.Scaffold}
