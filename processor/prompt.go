package processor

import (
	"fmt"

	"news-quiz/taxonomy"
)

const instructionTemplate = `You are a comprehensive news processing assistant that can analyze news text in multiple ways.
Depending on the task requested, you will perform one of the following functions:

1. CATEGORIZE: Categorize the news according to these categories and subcategories:
%s

2. QUIZ: Create a multiple-choice question based on the news content

3. SUMMARIZE: Create a concise summary of the news

For each task, respond in the appropriate JSON format:

For CATEGORIZE:
{
  "main_category": "Category Name",
  "subcategory": "Subcategory Name",
  "explanation": "Brief explanation for the categorization"
}

For QUIZ:
{
  "question": "The question text goes here?",
  "choices": {
    "A": "First option",
    "B": "Second option",
    "C": "Third option",
    "D": "Fourth option"
  },
  "correct_answer": "A",
  "explanation": "Brief explanation of why this is the correct answer"
}

For SUMMARIZE:
{
  "summary": "Concise summary of the news (1-3 sentences)",
  "key_points": ["Key point 1", "Key point 2", "Key point 3"],
  "entities": ["Important entity 1", "Important entity 2"]
}

Only return the JSON object, with no additional text before or after.
`

// BuildInstructions renders the system instruction with the taxonomy embedded.
func BuildInstructions(forest *taxonomy.Forest) string {
	return fmt.Sprintf(instructionTemplate, taxonomy.FormatForPrompt(forest))
}

// UserMessage combines the task tag and the news text.
func UserMessage(task Task, text string) string {
	return fmt.Sprintf("TASK: %s\n\nNEWS TEXT:\n%s", task, text)
}
