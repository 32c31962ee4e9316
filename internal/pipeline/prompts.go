package pipeline

import (
	"fmt"

	"albert/internal/contract"
	"albert/internal/domain"
)

const (
	researchSystemPrompt = "You are an AI assistant that provides detailed information about topics."
	outlineSystemPrompt  = "You are an AI assistant that provides recent developments about topics."
	answerSystemPrompt   = "You are an AI assistant that provides concise and informative answers to questions about specific topics."
)

func analysisResearchPrompt(topic string) string {
	return fmt.Sprintf(`Provide detailed information about the following topic: %q. Include any relevant dates, historical context, and current significance.`, topic)
}

func analysisPrompt(req domain.TopicRequest, info, referenceDate string) string {
	return fmt.Sprintf(`Analyze the following topic: %q. Consider the audience (%s) and country (%s) in your analysis. Today's date is %s.

Here's additional information about the topic:
%s

Based on this information, determine if the topic is related to an event, and if so, its timing and date. Also, categorize the topic into one of the following categories: Science, Sports, Politics, Technology, Entertainment, Business, Health, Education, or Other. Finally, write a short summary of the topic in 240 characters or fewer.

Provide your response in the following JSON format:
{
  "isEvent": boolean,
  "eventTiming": "Past" | "Ongoing" | "Future" | null,
  "eventDate": "YYYY-MM-DD" or null if not applicable,
  "category": "Science" | "Sports" | "Politics" | "Technology" | "Entertainment" | "Business" | "Health" | "Education" | "Other",
  "summary": "a short summary of the topic"
}

Ensure that the JSON is valid and properly formatted.`,
		req.Topic, req.Audience, req.Country, referenceDate, info)
}

func questionsPrompt(req domain.TopicRequest, analysis *domain.AnalysisResult) string {
	negation := ""
	if !analysis.IsEvent {
		negation = "not "
	}

	return fmt.Sprintf(`Generate 6 questions about the following topic: %q.
Consider that the audience is %s from %s.
The topic is %srelated to an event, and if it is, it's a %s event.

If the event is in the past:
- Use past tense in the questions
- Focus on what happened, the outcomes, and the significance of the event
- Ask about key figures involved and their roles
- Explore the historical context and impact of the event

If the event is in the future:
- Use future tense in the questions
- Focus on the anticipated details of the event (date, place, organization)
- Ask about preparations, expectations, and potential outcomes
- Explore the significance and potential impact of the upcoming event

If the event is ongoing:
- Use present tense in the questions
- Focus on current developments, progress, and immediate impacts
- Ask about key players and their current roles
- Explore how the event is unfolding and its potential future implications

If it's not an event:
- Focus on general aspects, current relevance, and key concepts related to the topic
- Ask about its importance, applications, or impact in the relevant field

Generate questions that the target audience would ask themselves and a journalist would answer about the topic.
Format the output as a JSON object with a single key "questions" containing an array of 6 question strings.`,
		req.Topic, req.Audience, req.Country, negation, analysis.EventTiming)
}

func imagePromptsPrompt(req domain.TopicRequest) string {
	return fmt.Sprintf(`Generate 4 detailed prompts suitable for a text-to-image AI model to illustrate the following topic: %q.
Consider that the audience is %s from %s.

Each prompt should be vivid, descriptive, and capture a unique aspect or perspective of the topic.
Include details about style, mood, colors, and composition that would result in engaging and relevant images for the topic.

IMPORTANT:
- Each prompt MUST start with %q
- Each prompt MUST end with %q

Format the output as a JSON object with a single key "imagePrompts" containing an array of 4 prompt strings.

Ensure that each prompt is unique and captures different aspects of the topic.`,
		req.Topic, req.Audience, req.Country, contract.PromptPrefix, contract.PromptSuffix)
}

func outlineResearchPrompt(topic string) string {
	return fmt.Sprintf(`What are the most recent developments regarding %q? Provide a concise summary.`, topic)
}

func outlinePrompt(req domain.TopicRequest, developments, referenceDate string) string {
	return fmt.Sprintf(`Create a detailed podcast outline for a %s audience on the topic: %q. Today's date is %s.

Consider these recent developments about the topic:
%s

The outline should include:
1. An engaging title for the podcast episode
2. 3-5 main sections, each with a clear subtitle
3. 2-3 key points or discussion topics for each section

Provide your response in the following JSON format:
{
  "title": "Podcast Episode Title",
  "sections": [
    {
      "title": "Section Title",
      "content": ["Key point 1", "Key point 2", "Key point 3"]
    },
    ...
  ]
}

Ensure that the JSON is valid and properly formatted.`,
		req.Audience, req.Topic, referenceDate, developments)
}

func answerPrompt(topic, question string) string {
	return fmt.Sprintf("Topic: %s\nQuestion: %s\nProvide a concise answer in about 2-3 sentences.", topic, question)
}
