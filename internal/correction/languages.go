package correction

// Language is one of the supported learning/explanation languages.
type Language string

const (
	LangEnglish  Language = "english"
	LangSpanish  Language = "spanish"
	LangChinese  Language = "chinese"
	LangJapanese Language = "japanese"
	LangKorean   Language = "korean"
	LangFrench   Language = "french"
	LangGerman   Language = "german"
	LangItalian  Language = "italian"
)

// Languages lists every supported language.
var Languages = []Language{
	LangEnglish, LangSpanish, LangChinese, LangJapanese,
	LangKorean, LangFrench, LangGerman, LangItalian,
}

// Valid reports whether l is a supported language.
func (l Language) Valid() bool {
	for _, known := range Languages {
		if l == known {
			return true
		}
	}
	return false
}

// DisplayName returns the English display name used inside prompts.
func (l Language) DisplayName() string {
	if name, ok := languageNames[l]; ok {
		return name
	}
	return languageNames[LangEnglish]
}

var languageNames = map[Language]string{
	LangEnglish:  "English",
	LangSpanish:  "Spanish",
	LangChinese:  "Chinese",
	LangJapanese: "Japanese",
	LangKorean:   "Korean",
	LangFrench:   "French",
	LangGerman:   "German",
	LangItalian:  "Italian",
}

// nativeInstructions tells the model which language to write explanations in,
// phrased in that language so weaker models follow it reliably.
var nativeInstructions = map[Language]string{
	LangEnglish:  "Provide explanations in English.",
	LangJapanese: "説明は日本語で行ってください。",
	LangSpanish:  "Proporcione explicaciones en español.",
	LangChinese:  "请用中文提供解释。",
	LangKorean:   "설명은 한국어로 해주세요.",
	LangFrench:   "Fournissez des explications en français.",
	LangGerman:   "Erklärungen auf Deutsch.",
	LangItalian:  "Fornire spiegazioni in italiano.",
}

// fieldDescriptions describe the JSON contract fields in the learner's native
// language, so the example values in the contract double as instructions.
type fieldDescriptions struct {
	CorrectedText      string
	Before             string
	After              string
	Explanation        string
	NoCorrectionNeeded string
}

var jsonFieldDescriptions = map[Language]fieldDescriptions{
	LangEnglish: {
		CorrectedText:      "The complete corrected diary text",
		Before:             "Original phrase before correction",
		After:              "Corrected phrase",
		Explanation:        "Brief explanation of why this correction is needed",
		NoCorrectionNeeded: "If no corrections are needed, return:",
	},
	LangJapanese: {
		CorrectedText:      "添削後の完全な日記テキスト",
		Before:             "修正前の元のフレーズ",
		After:              "修正後のフレーズ",
		Explanation:        "この修正が必要な理由の簡潔な説明（日本語で）",
		NoCorrectionNeeded: "修正が不要な場合は以下を返してください:",
	},
	LangSpanish: {
		CorrectedText:      "El texto completo del diario corregido",
		Before:             "Frase original antes de la corrección",
		After:              "Frase corregida",
		Explanation:        "Breve explicación de por qué se necesita esta corrección (en español)",
		NoCorrectionNeeded: "Si no se necesitan correcciones, devuelva:",
	},
	LangChinese: {
		CorrectedText:      "校正后的完整日记文本",
		Before:             "修正前的原始短语",
		After:              "修正后的短语",
		Explanation:        "简要说明为什么需要此修正（用中文）",
		NoCorrectionNeeded: "如果不需要修正，请返回：",
	},
	LangKorean: {
		CorrectedText:      "수정된 전체 일기 텍스트",
		Before:             "수정 전 원래 문구",
		After:              "수정된 문구",
		Explanation:        "이 수정이 필요한 이유에 대한 간략한 설명 (한국어로)",
		NoCorrectionNeeded: "수정이 필요 없는 경우 다음을 반환하세요:",
	},
	LangFrench: {
		CorrectedText:      "Le texte complet du journal corrigé",
		Before:             "Phrase originale avant correction",
		After:              "Phrase corrigée",
		Explanation:        "Brève explication de la raison de cette correction (en français)",
		NoCorrectionNeeded: "Si aucune correction n'est nécessaire, retournez:",
	},
	LangGerman: {
		CorrectedText:      "Der vollständige korrigierte Tagebuchtext",
		Before:             "Ursprünglicher Satz vor der Korrektur",
		After:              "Korrigierter Satz",
		Explanation:        "Kurze Erklärung, warum diese Korrektur erforderlich ist (auf Deutsch)",
		NoCorrectionNeeded: "Wenn keine Korrekturen erforderlich sind, geben Sie zurück:",
	},
	LangItalian: {
		CorrectedText:      "Il testo completo del diario corretto",
		Before:             "Frase originale prima della correzione",
		After:              "Frase corretta",
		Explanation:        "Breve spiegazione del perché è necessaria questa correzione (in italiano)",
		NoCorrectionNeeded: "Se non sono necessarie correzioni, restituisci:",
	},
}

func descriptionsFor(native Language) fieldDescriptions {
	if d, ok := jsonFieldDescriptions[native]; ok {
		return d
	}
	return jsonFieldDescriptions[LangEnglish]
}

func instructionFor(native Language) string {
	if s, ok := nativeInstructions[native]; ok {
		return s
	}
	return nativeInstructions[LangEnglish]
}
