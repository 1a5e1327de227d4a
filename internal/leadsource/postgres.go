// internal/leadsource/postgres.go
package leadsource

import (
	"database/sql"

	"github.com/rateworks/refi-outreach/internal/model"
)

// PostgresSource reads the seeded loans table.
type PostgresSource struct {
	DB *sql.DB
}

func NewPostgresSource(db *sql.DB) *PostgresSource {
	return &PostgresSource{DB: db}
}

func (s *PostgresSource) Fetch() ([]model.Loan, error) {
	query := `
		SELECT name, stage, loan_num, property, loan_amount, rate, program,
			   closing_date, email, phone, buyer_agent
		FROM loans ORDER BY id
	`
	rows, err := s.DB.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	loans := []model.Loan{}
	for rows.Next() {
		var loan model.Loan
		var rate sql.NullFloat64
		var closingDate, email, phone, agent sql.NullString
		if err := rows.Scan(&loan.Name, &loan.Stage, &loan.LoanNum, &loan.Property,
			&loan.LoanAmount, &rate, &loan.Program, &closingDate, &email, &phone, &agent); err != nil {
			return nil, err
		}
		if rate.Valid {
			v := rate.Float64
			loan.Rate = &v
		}
		loan.ClosingDate = closingDate.String
		loan.Email = email.String
		loan.Phone = phone.String
		loan.BuyerAgent = agent.String
		loans = append(loans, loan)
	}
	return loans, rows.Err()
}
