package migrations

import (
	"gorm.io/gorm"

	"github.com/shashiranjanraj/sdscatalog/app/models"
	"github.com/shashiranjanraj/sdscatalog/pkg/migration"
)

func init() {
	migration.Register("20230404074517_add_statements_column", &AddStatementsColumn{})
}

// AddStatementsColumn adds the hazard-statement codes and signal word the
// extractor started returning.
type AddStatementsColumn struct{}

func (m *AddStatementsColumn) Up(db *gorm.DB) error {
	mig := db.Migrator()
	for _, field := range []string{"Statements", "SignalWord"} {
		if mig.HasColumn(&models.SafetyDataSheet{}, field) {
			continue
		}
		if err := mig.AddColumn(&models.SafetyDataSheet{}, field); err != nil {
			return err
		}
	}
	return nil
}

func (m *AddStatementsColumn) Down(db *gorm.DB) error {
	mig := db.Migrator()
	for _, field := range []string{"SignalWord", "Statements"} {
		if !mig.HasColumn(&models.SafetyDataSheet{}, field) {
			continue
		}
		if err := mig.DropColumn(&models.SafetyDataSheet{}, field); err != nil {
			return err
		}
	}
	return nil
}
