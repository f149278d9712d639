package purchase

import (
	"context"
	"errors"
	"fmt"

	"boxoffice/internal/seats"
	"boxoffice/internal/shared/apperr"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SaleSeat is one seat being committed, with its price at time of sale.
type SaleSeat struct {
	Identity seats.SeatIdentity
	Price    float64
}

// Sale is the unit of work Confirm commits: all seats succeed or none do.
type Sale struct {
	CustomerID string
	Seats      []SaleSeat
}

type Repository interface {
	// ConfirmSale flips every seat to SOLD and issues one ticket per seat
	// inside a single transaction. Replaying the same sale for the same
	// customer is idempotent; a seat sold to anyone else aborts everything.
	ConfirmSale(ctx context.Context, sale Sale) ([]Ticket, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ConfirmSale(ctx context.Context, sale Sale) ([]Ticket, error) {
	tickets := make([]Ticket, 0, len(sale.Seats))

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, seat := range sale.Seats {
			if err := upsertSold(tx, seat, sale.CustomerID); err != nil {
				return err
			}

			ticket := Ticket{
				EventID:    seat.Identity.EventID,
				SectionID:  seat.Identity.SectionID,
				Row:        seat.Identity.Row,
				SeatNumber: seat.Identity.SeatNumber,
				CustomerID: sale.CustomerID,
				Price:      seat.Price,
			}
			// Idempotent replay: the seat's ticket already exists.
			err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{
					{Name: "event_id"}, {Name: "section_id"}, {Name: "row"}, {Name: "seat_number"},
				},
				DoNothing: true,
			}).Create(&ticket).Error
			if err != nil {
				return fmt.Errorf("failed to create ticket for %s: %w", seat.Identity.VirtualID(), err)
			}
			tickets = append(tickets, ticket)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

// upsertSold locks the seat's record row (if any) and flips it to SOLD.
// A record sold to another customer, or blocked by an admin, aborts the
// transaction.
func upsertSold(tx *gorm.DB, seat SaleSeat, customerID string) error {
	id := seat.Identity

	var existing seats.SeatRecord
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("event_id = ? AND section_id = ? AND row = ? AND seat_number = ?",
			id.EventID, id.SectionID, id.Row, id.SeatNumber).
		First(&existing).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		record := seats.SeatRecord{
			EventID:    id.EventID,
			SectionID:  id.SectionID,
			Row:        id.Row,
			SeatNumber: id.SeatNumber,
			Status:     seats.StatusSold,
			CustomerID: &customerID,
			Price:      seat.Price,
		}
		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("failed to create sold record for %s: %w", id.VirtualID(), err)
		}
		return nil

	case err != nil:
		return fmt.Errorf("failed to lock seat record for %s: %w", id.VirtualID(), err)
	}

	switch existing.Status {
	case seats.StatusSold:
		if existing.CustomerID != nil && *existing.CustomerID == customerID {
			return nil // replay of an already committed sale
		}
		return apperr.Conflict("seat %s is already sold", id.VirtualID())
	case seats.StatusBlocked:
		return apperr.Conflict("seat %s is blocked", id.VirtualID())
	}

	// Legacy HELD record converting to SOLD.
	updates := map[string]interface{}{
		"status":          seats.StatusSold,
		"customer_id":     customerID,
		"price":           seat.Price,
		"hold_expires_at": nil,
	}
	if err := tx.Model(&existing).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to mark seat %s sold: %w", id.VirtualID(), err)
	}
	return nil
}
