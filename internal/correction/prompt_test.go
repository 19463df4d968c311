package correction

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildCorrectionPrompt_Deterministic(t *testing.T) {
	a := BuildCorrectionPrompt(ModeIntermediate, LangEnglish, LangJapanese)
	b := BuildCorrectionPrompt(ModeIntermediate, LangEnglish, LangJapanese)
	assert.Equal(t, a, b)
}

func TestBuildCorrectionPrompt_AllCombinations(t *testing.T) {
	modes := []Mode{ModeBeginner, ModeIntermediate, ModeAdvanced}
	for _, mode := range modes {
		for _, target := range Languages {
			for _, native := range Languages {
				p := BuildCorrectionPrompt(mode, target, native)
				assert.NotEmpty(t, p, "mode=%s target=%s native=%s", mode, target, native)
				assert.Contains(t, p, target.DisplayName())
			}
		}
	}
}

func TestBuildCorrectionPrompt_ModeShapesInstructions(t *testing.T) {
	beginner := BuildCorrectionPrompt(ModeBeginner, LangEnglish, LangEnglish)
	assert.Contains(t, beginner, "beginner")
	assert.Contains(t, beginner, "encouraging")

	advanced := BuildCorrectionPrompt(ModeAdvanced, LangEnglish, LangEnglish)
	assert.Contains(t, advanced, "advanced")
	assert.Contains(t, advanced, "idioms")

	intermediate := BuildCorrectionPrompt(ModeIntermediate, LangEnglish, LangEnglish)
	assert.Contains(t, intermediate, "intermediate")
}

func TestBuildCorrectionPrompt_UnknownModeFallsBackToIntermediate(t *testing.T) {
	got := BuildCorrectionPrompt(Mode("expert"), LangEnglish, LangJapanese)
	want := BuildCorrectionPrompt(ModeIntermediate, LangEnglish, LangJapanese)
	assert.Equal(t, got, want)
}

func TestBuildCorrectionPrompt_NativeLanguageInstruction(t *testing.T) {
	jp := BuildCorrectionPrompt(ModeBeginner, LangEnglish, LangJapanese)
	assert.Contains(t, jp, "日本語")

	es := BuildCorrectionPrompt(ModeBeginner, LangEnglish, LangSpanish)
	assert.Contains(t, es, "español")
}

func TestBuildUserPrompt_ContainsContractAndText(t *testing.T) {
	p := BuildUserPrompt("I goed to school yesterday.", LangEnglish, LangJapanese)

	assert.Contains(t, p, `"correctedText"`)
	assert.Contains(t, p, `"corrections"`)
	assert.Contains(t, p, `"type"`)
	assert.Contains(t, p, `"before"`)
	assert.Contains(t, p, `"after"`)
	assert.Contains(t, p, `"explanation"`)
	assert.Contains(t, p, "grammar|spelling|style|vocabulary")
	assert.Contains(t, p, "I goed to school yesterday.")

	// The no-corrections branch must be spelled out so the model does not
	// improvise its own shape for clean text.
	assert.Contains(t, p, `"corrections": []`)
}

func TestBuildOCRPrompt_SentinelAndVerbatim(t *testing.T) {
	p := BuildOCRPrompt()
	assert.Contains(t, p, NoReadableText)
	assert.Contains(t, p, "keep them as-is")
	assert.True(t, strings.Contains(p, "transcribe"), "must ask for transcription")
}

func TestLanguageValid(t *testing.T) {
	for _, l := range Languages {
		assert.True(t, l.Valid(), "%s", l)
	}
	assert.False(t, Language("klingon").Valid())
}

func TestModeValid(t *testing.T) {
	assert.True(t, ModeBeginner.Valid())
	assert.True(t, ModeIntermediate.Valid())
	assert.True(t, ModeAdvanced.Valid())
	assert.False(t, Mode("expert").Valid())
}
