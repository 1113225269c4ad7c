package i18n

// messages is the flattened catalog of user-facing status messages,
// keyed "locale:key". Only the strings the handlers emit live here;
// page content belongs to the front-end bundles.
var messages = map[string]string{
	"en:auth.signin.ok":            "Authentication successful",
	"en:auth.signin.invalid":       "Invalid credentials",
	"en:auth.signin.not_found":     "User not found",
	"en:auth.signin.no_password":   "No password set for this account, use an alternate sign-in method",
	"en:auth.signup.ok":            "Account created, please sign in",
	"en:auth.signup.conflict":      "Email is already registered",
	"en:auth.signout.ok":           "Signed out",
	"en:auth.generic_failure":      "Could not process your request, please try again later",
	"en:auth.validation_failed":    "Please review the highlighted fields",
	"en:auth.unauthorized":         "Please sign in again",
	"en:interface.title":           "Dashboard",
	"en:interface.profile.title":   "Your profile",
	"en:interface.admin.title":     "User management",
	"en:validation.email":          "Please enter a valid email address",
	"en:validation.min":            "Value is too short",
	"en:validation.required":       "This field is required",
	"en:validation.password_weak":  "Password must contain a letter, a number and a special character",
	"en:validation.password_short": "Password must be at least 8 characters",

	"pt:auth.signin.ok":            "Autenticação realizada com sucesso",
	"pt:auth.signin.invalid":       "Credenciais inválidas",
	"pt:auth.signin.not_found":     "Usuário não encontrado",
	"pt:auth.signin.no_password":   "Conta sem senha cadastrada, use um método de acesso alternativo",
	"pt:auth.signup.ok":            "Conta criada, faça login",
	"pt:auth.signup.conflict":      "Email já cadastrado",
	"pt:auth.signout.ok":           "Sessão encerrada",
	"pt:auth.generic_failure":      "Não foi possível processar sua solicitação. Tente novamente mais tarde",
	"pt:auth.validation_failed":    "Revise os campos destacados",
	"pt:auth.unauthorized":         "Faça login novamente",
	"pt:interface.title":           "Painel",
	"pt:interface.profile.title":   "Seu perfil",
	"pt:interface.admin.title":     "Gerenciamento de usuários",
	"pt:validation.email":          "Por favor, insira um email válido",
	"pt:validation.min":            "Valor muito curto",
	"pt:validation.required":       "Campo obrigatório",
	"pt:validation.password_weak":  "Senha deve conter uma letra, um número e um caractere especial",
	"pt:validation.password_short": "Senha deve ter pelo menos 8 caracteres",
}

// T returns the message for key in the given locale, falling back to the
// default locale and finally to the key itself so missing entries stay
// visible instead of rendering blank.
func (l *Locales) T(locale, key string) string {
	if msg, ok := messages[locale+":"+key]; ok {
		return msg
	}
	if msg, ok := messages[l.def+":"+key]; ok {
		return msg
	}
	return key
}
