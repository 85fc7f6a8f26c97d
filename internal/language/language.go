// Package language holds the product's supported-language table: ISO 639-1
// codes, display names, and regional grouping. The table is the single point
// of truth for which languages the catalogue filter, the translation pipeline,
// and the language detector may emit.
package language

import "strings"

// Auto is the sentinel source-language value meaning "let detection decide".
// It is forwarded verbatim to the translation backend when no local guess is
// available, so the backend can run its own detection fallback.
const Auto = "auto"

// Unrestricted is the sentinel target-language filter value meaning "all
// languages" — no translation step runs when it is active.
const Unrestricted = "all"

// Language is one supported language entry.
type Language struct {
	// Code is the ISO 639-1 code ("en", "ta", …; "fil" is the one
	// three-letter exception the backend uses).
	Code string

	// Name is the English display name.
	Name string

	// Region groups languages for display ("Major", "South Asian", …).
	Region string
}

// Supported is the full language table, in display order. Mirrors the
// language choices offered by the voice backend.
var Supported = []Language{
	{Code: "en", Name: "English", Region: "Major"},
	{Code: "es", Name: "Spanish", Region: "Major"},
	{Code: "fr", Name: "French", Region: "Major"},
	{Code: "de", Name: "German", Region: "Major"},
	{Code: "pt", Name: "Portuguese", Region: "Major"},
	{Code: "it", Name: "Italian", Region: "Major"},
	{Code: "ru", Name: "Russian", Region: "Major"},
	{Code: "ja", Name: "Japanese", Region: "Major"},
	{Code: "ko", Name: "Korean", Region: "Major"},
	{Code: "zh", Name: "Chinese", Region: "Major"},
	{Code: "hi", Name: "Hindi", Region: "South Asian"},
	{Code: "bn", Name: "Bengali", Region: "South Asian"},
	{Code: "ta", Name: "Tamil", Region: "South Asian"},
	{Code: "te", Name: "Telugu", Region: "South Asian"},
	{Code: "mr", Name: "Marathi", Region: "South Asian"},
	{Code: "gu", Name: "Gujarati", Region: "South Asian"},
	{Code: "kn", Name: "Kannada", Region: "South Asian"},
	{Code: "ml", Name: "Malayalam", Region: "South Asian"},
	{Code: "pa", Name: "Punjabi", Region: "South Asian"},
	{Code: "ur", Name: "Urdu", Region: "South Asian"},
	{Code: "th", Name: "Thai", Region: "Southeast Asian"},
	{Code: "vi", Name: "Vietnamese", Region: "Southeast Asian"},
	{Code: "id", Name: "Indonesian", Region: "Southeast Asian"},
	{Code: "ms", Name: "Malay", Region: "Southeast Asian"},
	{Code: "fil", Name: "Filipino", Region: "Southeast Asian"},
	{Code: "my", Name: "Burmese", Region: "Southeast Asian"},
	{Code: "ar", Name: "Arabic", Region: "Middle Eastern"},
	{Code: "he", Name: "Hebrew", Region: "Middle Eastern"},
	{Code: "fa", Name: "Persian", Region: "Middle Eastern"},
	{Code: "tr", Name: "Turkish", Region: "Middle Eastern"},
	{Code: "nl", Name: "Dutch", Region: "European"},
	{Code: "pl", Name: "Polish", Region: "European"},
	{Code: "sv", Name: "Swedish", Region: "European"},
	{Code: "da", Name: "Danish", Region: "European"},
	{Code: "no", Name: "Norwegian", Region: "European"},
	{Code: "fi", Name: "Finnish", Region: "European"},
	{Code: "el", Name: "Greek", Region: "European"},
	{Code: "cs", Name: "Czech", Region: "European"},
	{Code: "hu", Name: "Hungarian", Region: "European"},
	{Code: "ro", Name: "Romanian", Region: "European"},
	{Code: "uk", Name: "Ukrainian", Region: "European"},
	{Code: "bg", Name: "Bulgarian", Region: "European"},
	{Code: "sk", Name: "Slovak", Region: "European"},
	{Code: "hr", Name: "Croatian", Region: "European"},
	{Code: "sl", Name: "Slovenian", Region: "European"},
	{Code: "lt", Name: "Lithuanian", Region: "European"},
	{Code: "lv", Name: "Latvian", Region: "European"},
	{Code: "et", Name: "Estonian", Region: "European"},
	{Code: "ca", Name: "Catalan", Region: "European"},
	{Code: "ga", Name: "Irish", Region: "European"},
	{Code: "cy", Name: "Welsh", Region: "European"},
	{Code: "sw", Name: "Swahili", Region: "African"},
	{Code: "af", Name: "Afrikaans", Region: "African"},
	{Code: "am", Name: "Amharic", Region: "African"},
	{Code: "zu", Name: "Zulu", Region: "African"},
}

// byCode is built once from Supported for O(1) lookups.
var byCode = func() map[string]Language {
	m := make(map[string]Language, len(Supported))
	for _, l := range Supported {
		m[l.Code] = l
	}
	return m
}()

// ByCode returns the language entry for code.
func ByCode(code string) (Language, bool) {
	l, ok := byCode[code]
	return l, ok
}

// IsSupported reports whether code is in the supported table.
func IsSupported(code string) bool {
	_, ok := byCode[code]
	return ok
}

// ByRegion groups the supported table by region, preserving display order
// within each region.
func ByRegion() map[string][]Language {
	regions := make(map[string][]Language)
	for _, l := range Supported {
		regions[l.Region] = append(regions[l.Region], l)
	}
	return regions
}

// SampleText returns the localized audition sentence for the given language
// with the voice's display name substituted in. Falls back to English when
// the language has no localized template.
func SampleText(code, voiceName string) string {
	t, ok := sampleTexts[code]
	if !ok {
		t = sampleTexts["en"]
	}
	return strings.ReplaceAll(t, "{name}", voiceName)
}

// sampleTexts holds per-language audition templates. "{name}" is replaced
// with the voice's display name.
var sampleTexts = map[string]string{
	"en":  "Hello, I am {name}. This is a sample of my voice.",
	"es":  "Hola, soy {name}. Esta es una muestra de mi voz.",
	"fr":  "Bonjour, je suis {name}. Ceci est un échantillon de ma voix.",
	"de":  "Hallo, ich bin {name}. Dies ist eine Hörprobe meiner Stimme.",
	"pt":  "Olá, eu sou {name}. Esta é uma amostra da minha voz.",
	"it":  "Ciao, sono {name}. Questo è un campione della mia voce.",
	"ru":  "Привет, я {name}. Это образец моего голоса.",
	"ja":  "こんにちは、{name}です。これは私の声のサンプルです。",
	"ko":  "안녕하세요, 저는 {name}입니다. 제 목소리 샘플입니다.",
	"zh":  "你好，我是{name}。这是我的声音样本。",
	"hi":  "नमस्ते, मैं {name} हूँ। यह मेरी आवाज़ का नमूना है।",
	"bn":  "নমস্কার, আমি {name}। এটি আমার কণ্ঠের একটি নমুনা।",
	"ta":  "வணக்கம், நான் {name}. இது என் குரலின் மாதிரி.",
	"te":  "నమస్కారం, నేను {name}. ఇది నా గొంతు నమూనా.",
	"mr":  "नमस्कार, मी {name}. हा माझ्या आवाजाचा एक नमुना आहे.",
	"gu":  "નમસ્તે, હું {name} છું. આ મારા અવાજનો નમૂનો છે.",
	"ml":  "നമസ്കാരം, ഞാൻ {name}. ഇതെന്റെ ശബ്ദത്തിന്റെ മാതൃകയാണ്.",
	"pa":  "ਸਤਿ ਸ਼੍ਰੀ ਅਕਾਲ, ਮੈਂ {name} ਹਾਂ। ਇਹ ਮੇਰੀ ਆਵਾਜ਼ ਦਾ ਨਮੂਨਾ ਹੈ।",
	"ur":  "ہیلو، میں {name} ہوں۔ یہ میری آواز کا نمونہ ہے۔",
	"th":  "สวัสดี ฉันชื่อ {name} นี่คือตัวอย่างเสียงของฉัน",
	"vi":  "Xin chào, tôi là {name}. Đây là mẫu giọng nói của tôi.",
	"id":  "Halo, saya {name}. Ini adalah contoh suara saya.",
	"ms":  "Halo, saya {name}. Ini adalah contoh suara saya.",
	"fil": "Kamusta, ako si {name}. Ito ay isang halimbawa ng aking boses.",
	"ar":  "مرحباً، أنا {name}. هذه عينة من صوتي.",
	"he":  "שלום, אני {name}. זו דוגמה של הקול שלי.",
	"fa":  "سلام، من {name} هستم. این نمونه‌ای از صدای من است.",
	"tr":  "Merhaba, ben {name}. Bu sesimin bir örneği.",
	"nl":  "Hallo, ik ben {name}. Dit is een voorbeeld van mijn stem.",
	"pl":  "Cześć, jestem {name}. To próbka mojego głosu.",
	"sv":  "Hej, jag heter {name}. Detta är ett prov på min röst.",
	"da":  "Hej, jeg hedder {name}. Dette er en prøve på min stemme.",
	"no":  "Hei, jeg heter {name}. Dette er en prøve på min stemme.",
	"fi":  "Hei, olen {name}. Tässä on näyte äänestäni.",
	"el":  "Γεια σας, είμαι ο/η {name}. Αυτό είναι ένα δείγμα της φωνής μου.",
	"cs":  "Ahoj, jsem {name}. Toto je ukázka mého hlasu.",
	"hu":  "Szia, {name} vagyok. Ez a hangom mintája.",
	"ro":  "Bună, sunt {name}. Acesta este un exemplu al vocii mele.",
	"uk":  "Привіт, я {name}. Це зразок мого голосу.",
	"bg":  "Здравейте, аз съм {name}. Това е проба от моя глас.",
	"sk":  "Ahoj, som {name}. Toto je ukážka môjho hlasu.",
	"hr":  "Bok, ja sam {name}. Ovo je uzorak mog glasa.",
	"sl":  "Živjo, jaz sem {name}. To je vzorec mojega glasu.",
	"lt":  "Labas, aš esu {name}. Tai mano balso pavyzdys.",
	"lv":  "Sveiki, es esmu {name}. Šis ir manas balss paraugs.",
	"et":  "Tere, olen {name}. See on minu hääle näidis.",
	"ca":  "Hola, soc {name}. Aquesta és una mostra de la meva veu.",
	"ga":  "Dia duit, is mise {name}. Seo sampla de mo ghuth.",
	"cy":  "Helo, {name} ydw i. Dyma sampl o fy llais.",
	"sw":  "Hujambo, mimi ni {name}. Hii ni sampuli ya sauti yangu.",
	"af":  "Hallo, ek is {name}. Hierdie is 'n voorbeeld van my stem.",
	"am":  "ሰላም፣ እኔ {name} ነኝ። ይህ የድምፄ ናሙና ነው።",
	"zu":  "Sawubona, ngingu-{name}. Lesi isibonelo sezwi lami.",
}
