package models

// Tier is a subscription plan level chosen on the pricing page.
type Tier string

const (
	TierFree         Tier = "free"
	TierStarter      Tier = "starter"
	TierProfessional Tier = "professional"
	TierEnterprise   Tier = "enterprise"
)

// Employee-count bands offered in the organization step.
var CompanySizes = []string{"1-10", "11-50", "51-200", "201-500", "501-1000", "1000+"}

var Industries = []string{
	"Technology",
	"Manufacturing",
	"Retail",
	"Finance",
	"Healthcare",
	"Energy",
	"Transportation",
	"Construction",
	"Agriculture",
	"Other",
}

// UserData is the onboarding draft filled in across the wizard steps.
type UserData struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	CompanyName     string `json:"companyName"`
	CompanySize     string `json:"companySize"`
	Industry        string `json:"industry"`
	Phone           string `json:"phone"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Redacted returns a copy safe to echo back to the browser.
func (u UserData) Redacted() UserData {
	u.Password = ""
	u.ConfirmPassword = ""
	return u
}

func IsCompanySize(s string) bool { return contains(CompanySizes, s) }

func IsIndustry(s string) bool { return contains(Industries, s) }

func contains(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}
