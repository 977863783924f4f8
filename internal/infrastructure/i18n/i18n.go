// Package i18n translates user-facing API messages. French is the default,
// English and Arabic are also available.
package i18n

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys
const (
	KeyTenantMissing    = "tenant.missing"
	KeyUnauthenticated  = "auth.required"
	KeyTenantMismatch   = "tenant.mismatch"
	KeyInvalidToken     = "auth.invalid_token"
	KeyValidationFailed = "validation.failed"
	KeyForbidden        = "auth.forbidden"
	KeyTenantSuspended  = "tenant.suspended"
)

var translations = map[string]map[language.Tag]string{
	KeyTenantMissing: {
		language.French:  "Aucune exploitation n'a pu être identifiée pour cette requête",
		language.English: "No tenant could be resolved for this request",
		language.Arabic:  "تعذر تحديد المستغلة لهذا الطلب",
	},
	KeyUnauthenticated: {
		language.French:  "Authentification requise",
		language.English: "Authentication is required",
		language.Arabic:  "المصادقة مطلوبة",
	},
	KeyTenantMismatch: {
		language.French:  "L'utilisateur n'appartient pas à l'exploitation demandée",
		language.English: "User does not belong to the requested tenant",
		language.Arabic:  "المستخدم لا ينتمي إلى المستغلة المطلوبة",
	},
	KeyInvalidToken: {
		language.French:  "Jeton invalide ou expiré",
		language.English: "Invalid or expired token",
		language.Arabic:  "رمز غير صالح أو منتهي الصلاحية",
	},
	KeyValidationFailed: {
		language.French:  "Les données envoyées sont invalides",
		language.English: "Request validation failed",
		language.Arabic:  "البيانات المرسلة غير صالحة",
	},
	KeyTenantSuspended: {
		language.French:  "Cette exploitation est suspendue",
		language.English: "This tenant is suspended",
		language.Arabic:  "هذه المستغلة موقوفة",
	},
	KeyForbidden: {
		language.French:  "Action non autorisée pour ce rôle",
		language.English: "This role is not allowed to perform the action",
		language.Arabic:  "هذا الدور غير مخول للقيام بهذا الإجراء",
	},
}

// Translator picks a language from Accept-Language and renders messages
type Translator struct {
	fallback language.Tag
	matcher  language.Matcher
	catalog  catalog.Catalog
}

// New builds a translator whose fallback language is defaultLocale (fr, en
// or ar).
func New(defaultLocale string) (*Translator, error) {
	fallback, err := language.Parse(defaultLocale)
	if err != nil {
		return nil, fmt.Errorf("invalid default locale %q: %w", defaultLocale, err)
	}

	supported := []language.Tag{fallback}
	for _, tag := range []language.Tag{language.French, language.English, language.Arabic} {
		if tag != fallback {
			supported = append(supported, tag)
		}
	}
	if len(supported) != 3 {
		return nil, fmt.Errorf("unsupported default locale %q", defaultLocale)
	}

	b := catalog.NewBuilder(catalog.Fallback(fallback))
	for key, byLang := range translations {
		for tag, msg := range byLang {
			if err := b.SetString(tag, key, msg); err != nil {
				return nil, err
			}
		}
	}

	return &Translator{
		fallback: fallback,
		matcher:  language.NewMatcher(supported),
		catalog:  b,
	}, nil
}

// Match returns the best supported language for an Accept-Language header.
// Empty or unparsable headers yield the fallback.
func (t *Translator) Match(acceptLanguage string) language.Tag {
	tag, _ := language.MatchStrings(t.matcher, acceptLanguage)
	base, _ := tag.Base()
	matched, err := language.Compose(base)
	if err != nil {
		return t.fallback
	}
	return matched
}

// Translate renders key in tag. Unknown keys are returned verbatim.
func (t *Translator) Translate(tag language.Tag, key string, args ...any) string {
	return message.NewPrinter(tag, message.Catalog(t.catalog)).Sprintf(key, args...)
}

// TranslateFor is Translate(Match(acceptLanguage), key)
func (t *Translator) TranslateFor(acceptLanguage, key string, args ...any) string {
	return t.Translate(t.Match(acceptLanguage), key, args...)
}
