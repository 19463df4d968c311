// Package correction holds the correction domain types and the prompt
// builder. Everything here is pure: the same (mode, target, native) inputs
// always yield the same prompts.
package correction

import "fmt"

// NoReadableText is the sentinel the OCR prompt instructs the model to emit
// when an image contains no legible text. The invoker maps it to "".
const NoReadableText = "[No readable text found]"

// BuildCorrectionPrompt returns the system prompt for a correction pass.
// The target language is the one being learned; the native language controls
// the language explanations are written in.
func BuildCorrectionPrompt(mode Mode, target, native Language) string {
	lang := target.DisplayName()
	instruction := instructionFor(native)

	switch mode {
	case ModeBeginner:
		return fmt.Sprintf(`You are a kind %[1]s teacher correcting a beginner student's %[1]s diary.
Focus only on:
- Basic grammar errors (verb tense, subject-verb agreement)
- Spelling mistakes
- Missing articles or basic particles

%[2]s
Keep explanations simple and encouraging.`, lang, instruction)

	case ModeAdvanced:
		return fmt.Sprintf(`You are a %[1]s teacher refining an advanced student's %[1]s diary.
Provide comprehensive corrections including:
- Grammar and spelling (including subtle errors)
- Replace unnatural expressions with natural expressions or idioms
- Style improvements for more sophisticated writing
- Better vocabulary suggestions
- Detailed explanations of why native speakers prefer certain expressions

%[2]s`, lang, instruction)

	default: // intermediate
		return fmt.Sprintf(`You are a %[1]s teacher improving an intermediate student's %[1]s diary.
Focus on:
- All grammar and spelling errors
- Unnatural expressions that should sound more natural
- Vocabulary improvement suggestions
- Preposition/particle usage

%[2]s
Explain clearly why each correction is needed.`, lang, instruction)
	}
}

// BuildUserPrompt returns the user prompt: the JSON contract description
// followed by the diary text to correct. The contract demands a single JSON
// object with exactly correctedText and corrections, including the
// no-corrections-needed branch.
func BuildUserPrompt(originalText string, target, native Language) string {
	lang := target.DisplayName()
	desc := descriptionsFor(native)

	return fmt.Sprintf(`Correct the following %s diary and list all corrections.

IMPORTANT: Reply ONLY with JSON in this format. Do not include any other text:
{
  "correctedText": "%s",
  "corrections": [
    {
      "type": "grammar|spelling|style|vocabulary",
      "before": "%s",
      "after": "%s",
      "explanation": "%s"
    }
  ]
}

%s
{
  "correctedText": "original text unchanged",
  "corrections": []
}

Diary to correct:
"""
%s
"""`, lang, desc.CorrectedText, desc.Before, desc.After, desc.Explanation, desc.NoCorrectionNeeded, originalText)
}

// BuildOCRPrompt returns the instruction for handwritten-text transcription.
// The model must transcribe verbatim, preserving the writer's mistakes, and
// emit the NoReadableText sentinel when nothing is legible.
func BuildOCRPrompt() string {
	return `You are an expert at reading handwritten text. Please carefully read and transcribe all the handwritten text in this image.

Instructions:
- Transcribe the text exactly as written, preserving line breaks and paragraphs
- If you're unsure about a word, make your best guess based on context
- Do not add any commentary, explanations, or corrections
- If there are spelling or grammar mistakes in the handwriting, keep them as-is
- If no text is visible or readable, respond with: ` + NoReadableText + `
- Only output the transcribed text, nothing else

Transcribe the handwritten text:`
}
