package docstore

import "fmt"

// Paths builds the per-application, per-user document paths. All budget
// data for one user lives under artifacts/{app}/users/{uid}.
type Paths struct {
	AppID  string
	UserID string
}

func (p Paths) BudgetsCollection() string {
	return fmt.Sprintf("artifacts/%s/users/%s/budgets", p.AppID, p.UserID)
}

func (p Paths) Budget(budgetID string) string {
	return p.BudgetsCollection() + "/" + budgetID
}

func (p Paths) ArchiveCollection(budgetID string) string {
	return p.Budget(budgetID) + "/archive"
}

func (p Paths) Archive(budgetID, periodID string) string {
	return p.ArchiveCollection(budgetID) + "/" + periodID
}

func (p Paths) Preferences() string {
	return fmt.Sprintf("artifacts/%s/users/%s/preferences/userPrefs", p.AppID, p.UserID)
}

// LegacyBudget is the pre-multi-budget document location, kept only so the
// one-time migration can find and remove it.
func (p Paths) LegacyBudget() string {
	return fmt.Sprintf("artifacts/%s/users/%s/budget/current", p.AppID, p.UserID)
}
