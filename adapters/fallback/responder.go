package fallback

import (
	"context"
	"strings"

	"github.com/sudevbasti/portfolio-assistant/domain/entities"
	"github.com/sudevbasti/portfolio-assistant/domain/repositories"
)

// Responder is the offline reply path. It maps a lower-cased utterance to a
// canned response via keyword matching over a fixed topic table. It is a pure
// function over the rule table: no external calls, no randomness, no mutable
// state, and it cannot fail because the default rule always matches.
type Responder struct {
	rules []topicRule
}

// topicRule pairs a topic tag with its trigger words and canned response.
// Rules are evaluated in order; the first match wins. Short greeting triggers
// match whole words only, so "achievement" does not trip on the "hi" inside it.
type topicRule struct {
	topic     string
	triggers  []string
	wholeWord bool
	response  string
}

// Ensure Responder implements the Responder interface
var _ repositories.Responder = (*Responder)(nil)

const (
	greetingResponse = `Hello! I'm here to help you learn about Sudev Basti. You can ask me about:

- His projects and technical work
- Skills and technologies he uses
- Educational background
- Internship and research experience
- Contact information

What would you like to know?`

	skillsResponse = `Sudev has expertise in various technologies:

Programming: Python, Java, SQL, C
AI/ML: TensorFlow, PyTorch, Scikit-learn, OpenCV
Tools: Android Studio, Firebase, Railway, VS Code

He specializes in Machine Learning, Deep Learning, and Web Development.`

	educationResponse = `Sudev's educational background:

- B.E. in Artificial Intelligence and Machine Learning at SDM College of Engineering and Technology, Dharwad (CGPA: 7.9)
- Minor in Artificial Intelligence at IIT Ropar (Nov 2024 - Dec 2025)

He's also completed internships and has published research in the field of AI/ML.`

	projectsResponse = `Sudev has worked on several impressive projects:

- Network Intrusion Detection Using ML - ML model to detect and classify network intrusions
- AI-Based Indian Road Pothole Detection - 92% accuracy with reduced false positives
- Hate Speech Detection Using Machine Learning - 3rd place in ICON 2024
- Law GPT - LLM-powered Indian legal assistant with 158K+ legal records

Would you like to know more about any specific project?`

	internshipResponse = `Sudev has valuable research experience:

IIIT, Dharwad: Hate Speech Detection Using Machine Learning

This work resulted in a published research paper and secured 3rd place in Task A of ICON 2024.`

	contactResponse = `You can reach Sudev through:

Email: sudevbasti0717@gmail.com
Phone: +91 9036167707
GitHub: github.com/sudevbasti

Feel free to connect for opportunities or collaborations!`

	achievementsResponse = `Sudev has several notable achievements:

- 3rd place in ICON 2024 Natural Language Processing Conference
- Published research paper on hate speech detection
- Department Main Coordinator at INSIGNIA 24, SDMCET
- Multiple certifications in Machine Learning and Java
- Excellent academic performance with 7.9 CGPA`

	summaryResponse = `Sudev Basti is a B.E. AIML engineering student with hands-on experience in Python, SQL, and ML frameworks through academic projects and internships. He is passionate about building scalable AI solutions and eager to contribute to impactful projects across domains.`

	defaultResponse = `I'm an AI assistant trained on Sudev Basti's resume. I can help you learn about his projects, skills, education, and experience. Try asking about:

- "Tell me about his projects"
- "What skills does he have?"
- "What is his educational background?"
- "How can I contact him?"

What would you like to know?`
)

// NewResponder creates the fallback responder with its fixed rule table.
// Topic priority: greeting > skills > education > projects > internship >
// contact > achievements > summary > default.
func NewResponder() *Responder {
	return &Responder{
		rules: []topicRule{
			{topic: "greeting", triggers: []string{"hello", "hi", "hey"}, wholeWord: true, response: greetingResponse},
			{topic: "skills", triggers: []string{"skill", "technology", "expertise"}, response: skillsResponse},
			{topic: "education", triggers: []string{"education", "study", "college"}, response: educationResponse},
			{topic: "projects", triggers: []string{"project", "work"}, response: projectsResponse},
			{topic: "internship", triggers: []string{"internship", "experience"}, response: internshipResponse},
			{topic: "contact", triggers: []string{"contact", "reach", "email", "phone"}, response: contactResponse},
			{topic: "achievements", triggers: []string{"achievement", "award", "recognition"}, response: achievementsResponse},
			{topic: "summary", triggers: []string{"summary", "about", "yourself"}, response: summaryResponse},
		},
	}
}

// Resolve maps an utterance to a canned response. The input is case-folded
// before matching; a message containing none of the recognized trigger words
// falls through to the default help response.
func (r *Responder) Resolve(utterance string) string {
	message := strings.ToLower(utterance)

	for _, rule := range r.rules {
		if rule.matches(message) {
			return rule.response
		}
	}

	return defaultResponse
}

// Reply implements repositories.Responder. The history is ignored: the
// fallback path answers from the current utterance alone.
func (r *Responder) Reply(ctx context.Context, utterance string, history []entities.ChatTurn) (string, error) {
	return r.Resolve(utterance), nil
}

func (rule topicRule) matches(message string) bool {
	for _, trigger := range rule.triggers {
		if rule.wholeWord {
			if containsWord(message, trigger) {
				return true
			}
			continue
		}
		if strings.Contains(message, trigger) {
			return true
		}
	}
	return false
}

func containsWord(message, word string) bool {
	for _, field := range strings.FieldsFunc(message, func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	}) {
		if field == word {
			return true
		}
	}
	return false
}
