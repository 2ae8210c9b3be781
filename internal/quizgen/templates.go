package quizgen

// Placeholders recognised in prompt templates. Anything else in braces is
// left as written.
const (
	phSubject      = "{subject}"
	phTopics       = "{topics}"
	phDifficulty   = "{difficulty}"
	phCount        = "{count}"
	phExamples     = "{examples}"
	phInstructions = "{user_instructions}"
	phRegenerate   = "{regenerate}"
)

// outputFormat is shared by both default templates. The model is asked for
// the answer before the stem because it otherwise writes explanations that
// disagree with the marked answer.
const outputFormat = `Return ONLY a JSON array, with no prose before or after it and no Markdown outside the strings. Each element has this shape:

` + "```json" + `
[
  {
    "text": "Question stem in Markdown. Put any code in a fenced block inside this string.",
    "answers": [
      {"text": "first choice", "is_correct": false, "explanation": "the misconception that leads here"},
      {"text": "second choice", "is_correct": true, "explanation": "why this is right"}
    ],
    "explanation": "Step-by-step solution that arrives at the correct answer",
    "distractors": "One line per wrong answer naming the misconception behind it"
  }
]
` + "```" + `

Rules for the JSON:
- Exactly one answer per question has "is_correct": true
- Escape backslashes, double quotes and newlines inside strings
- Use backticks for inline code in answers, like ` + "`42`"

const defaultGenerationTemplate = `You are an expert {subject} question writer with strong analytical skills.

**CRITICAL RULE: Derive the correct answer BEFORE writing the question.**

For every question:
1. Decide which concept you will test
2. Write any code or data the question needs
3. Solve or trace it step by step and compute the correct answer
4. Check that result a second time
5. Build each wrong answer from a specific student misconception
6. Only then write the question in the output format below

If you find a mistake while writing the explanation, do not patch it. Start that question over with a different scenario.

**Target Topic(s):** {topics}
**Target Difficulty:** {difficulty}
**Number of Questions:** {count}
{regenerate}
---

## Reference Examples (JSON format)

Study these examples. Pay attention to:
- How ` + "`distractors`" + ` explains WHY each wrong answer is tempting
- The ` + "`common_errors`" + ` students make
- How ` + "`difficulty`" + ` relates to ` + "`cognitive_level`" + `

{examples}

---

## Your Task

Generate {count} NEW question(s). Each one must:
1. Test the target topic(s) at the target difficulty
2. Use different scenarios than the examples
3. Have 4 or 5 answers, each wrong answer exploiting a specific misconception
4. Put the correct answer in a random position
5. Have an explanation that agrees with the answer marked correct

## Output Format

` + outputFormat + `{user_instructions}

Generate {count} question(s) now:`

const defaultRegenerateTemplate = `You are an expert {subject} question writer with strong analytical skills.

**CRITICAL: Derive the answer completely before writing the question.**

Generate a NEW multiple-choice question to replace this one:
{regenerate}{examples}

**Target Topic(s):** {topics}
**Target Difficulty:** {difficulty}

**Requirements:**
- Keep a similar topic and difficulty but make it DIFFERENT
- Exactly 4 answer choices
- Each wrong answer exploits a specific student misconception
- Include code if appropriate
- Verify your calculations before committing to an answer
- If you make an error, start over with a different scenario

**Output format:**

The array must hold exactly one question.
` + outputFormat + `{user_instructions}

Generate the replacement question now:`
