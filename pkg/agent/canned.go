package agent

import (
	"strings"

	"github.com/papercomputeco/kotori/pkg/cascade"
)

// Menu closes every answer. The router's follow-up rules listen for its
// three options.
const Menu = "What would you like to do next? Do you want to know more about empty nest? Do you want to tell me how you are feeling today? Shall I suggest activities to help you cope with this?"

// Greeting is returned when the welcome model call fails.
const Greeting = "Hello! I'm Kotori, your companion for navigating Empty Nest Syndrome. " + Menu

// spaced renders the short validation answers: bullets separated by a
// blank line.
func spaced(bullets ...string) string {
	return "• " + strings.Join(bullets, "\n\n• ") + "\n\n" + Menu
}

// dense renders the longer error answers: one bullet per line.
func dense(bullets ...string) string {
	return "• " + strings.Join(bullets, "\n• ") + "\n\n" + Menu
}

var qnaValidation = cascade.Table[string]{
	cascade.Keywords("symptoms", spaced(
		"Empty Nest Syndrome causes feelings of sadness when children leave home.",
		"Parents may have trouble sleeping or feel less hungry.",
		"Some parents worry about their children or their own identity.",
	), "symptom", "sign"),
	cascade.Keywords("causes", spaced(
		"Empty Nest Syndrome happens when children leave home and parents' roles change.",
		"Parents may feel a void from fewer daily responsibilities.",
		"Your identity as a parent may feel challenged.",
	), "cause", "why"),
	cascade.Keywords("coping", spaced(
		"Try reconnecting with activities you enjoy.",
		"Build new routines and keep in touch with your children.",
		"Talk to friends or a counselor for support.",
	), "cope", "deal", "manage"),
}

var qnaValidationDefault = spaced(
	"Empty Nest Syndrome is the sadness parents feel when children leave home.",
	"It's a normal feeling many parents experience.",
	"These feelings will pass with time.",
)

var qnaError = cascade.Table[string]{
	cascade.Keywords("symptoms", spaced(
		"Empty Nest Syndrome often causes feelings of sadness and loss.",
		"You might notice changes in your sleep or appetite.",
		"Many parents worry about their children or their own identity.",
	), "symptom", "sign"),
	cascade.Keywords("causes", spaced(
		"Empty Nest Syndrome happens when children leave home.",
		"Your daily routine changes without children at home.",
		"Many parents question their purpose during this time.",
	), "cause", "why"),
	cascade.Keywords("coping", spaced(
		"Try new hobbies or return to old interests you enjoy.",
		"Keep in touch with your children while respecting their independence.",
		"Connect with other parents in similar situations.",
	), "cope", "deal", "manage"),
	cascade.Keywords("remedies", spaced(
		"Try mindfulness or meditation to manage your emotions.",
		"Regular exercise can reduce stress and improve your mood.",
		"Create new routines and set personal goals.",
	), "calm", "remed", "help"),
}

var qnaErrorDefault = spaced(
	"Empty Nest Syndrome refers to feelings of sadness when children leave home.",
	"It's a natural part of parenting.",
	"These feelings are temporary.",
)

var emotionalValidation = cascade.Table[string]{
	cascade.Keywords("sadness", spaced(
		"It's normal to feel sad when your children leave home.",
		"Many parents feel down during this time.",
		"Talk to a professional if your sadness feels too heavy.",
	), "sad", "depress", "down", "blue"),
	cascade.Keywords("loneliness", spaced(
		"Feeling empty is normal when your home changes.",
		"Many parents struggle with this big change in their life.",
		"This is a chance to rediscover yourself.",
	), "lonely", "alone", "empty"),
	cascade.Keywords("purpose", spaced(
		"It's normal to question your purpose after being a parent for so long.",
		"This time can help you grow in new ways.",
		"Give yourself time to adjust to this change.",
	), "purpose", "meaning", "identity"),
}

var emotionalValidationDefault = spaced(
	"Your feelings are valid.",
	"Many parents find this time hard.",
	"Be kind to yourself during this change.",
)

var emotionalError = cascade.Table[string]{
	cascade.Keywords("sadness", dense(
		"The sadness you're feeling is a natural response to this significant life change.",
		"Many parents experience similar feelings of loss and grief when children leave home.",
		"These emotions, while difficult, often become less intense as you adjust to your new normal.",
	), "sad", "depress", "down", "blue"),
	cascade.Keywords("loneliness", dense(
		"The emptiness of your home can be one of the most challenging aspects of this transition.",
		"This feeling of loneliness is shared by many parents adjusting to children's departure.",
		"Creating new routines and connections can gradually help fill the space that feels empty now.",
	), "lonely", "alone", "empty"),
	cascade.Keywords("purpose", dense(
		"Many parents feel a sense of lost purpose when their primary caregiving role changes.",
		"This transition is an opportunity to rediscover aspects of yourself beyond parenting.",
		"Finding new meaning often comes through exploring interests and connections you couldn't fully pursue before.",
	), "purpose", "meaning", "identity", "lost"),
}

var emotionalErrorDefault = dense(
	"I hear you, and your feelings are completely valid and normal.",
	"Empty Nest Syndrome is challenging, but these emotions will ease with time.",
	"You're not alone in this - many parents successfully navigate this transition.",
)

var suggestionValidation = cascade.Table[string]{
	cascade.Keywords("calm", spaced(
		"Try a short daily meditation to manage worry.",
		"Practice simple breathing: in for 4 counts, hold for 4, out for 6.",
		"Create a calm bedtime routine for better sleep.",
	), "calm", "relax", "stress", "anxious", "anxiety"),
	cascade.Keywords("hobbies", spaced(
		"Try creative activities like painting, writing, or music.",
		"Physical hobbies like walking, dancing, or yoga can boost your mood.",
		"Volunteering helps you connect with others.",
	), "hobby", "activit", "interest"),
	cascade.Keywords("social", spaced(
		"Volunteer for causes you care about to meet new people.",
		"Join clubs or classes that match your interests.",
		"Reconnect with old friends you haven't seen in a while.",
	), "social", "connect", "friend", "lonely"),
}

var suggestionValidationDefault = spaced(
	"Try reconnecting with old friends or joining community groups.",
	"Explore new hobbies or return to old interests you enjoy.",
	"Create a routine that includes time for yourself.",
)

var suggestionError = cascade.Table[string]{
	cascade.Keywords("calm", dense(
		"Practice deep breathing exercises: inhale for 4 counts, hold for 4, exhale for 6 counts.",
		"Create a daily relaxation ritual like a warm bath with essential oils or a quiet reading session.",
		"Try a guided meditation app to help manage stress and improve sleep quality.",
	), "calm", "relax", "stress"),
	cascade.Keywords("hobbies", dense(
		"Consider exploring new hobbies or interests that you may have put on hold during active parenting.",
		"Try rotating through different activities weekly until you find ones that truly engage you.",
		"Look for local classes or workshops to learn new skills in a social environment.",
	), "hobby", "activit", "interest"),
	cascade.Keywords("social", dense(
		"Join community groups or classes aligned with your interests to meet like-minded people.",
		"Consider volunteering for causes you care about as a meaningful way to connect with others.",
		"Reach out to old friends or neighbors for coffee dates or walks to rebuild your social circle.",
	), "social", "connect", "friend", "lonely"),
}

var suggestionErrorDefault = dense(
	"Consider exploring new hobbies or interests that you may have put on hold during active parenting.",
	"Reconnect with friends and family, or join community groups to build new social connections.",
	"Focus on personal wellness through exercise, meditation, or other self-care activities.",
)
