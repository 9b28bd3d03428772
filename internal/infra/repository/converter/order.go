package converter

import (
	"time"

	"storefront/internal/domain/order"
	"storefront/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type ServiceRow struct {
	ID              uuid.UUID
	ClientID        uuid.UUID
	OrderID         uuid.UUID
	PackageID       uuid.UUID
	PricingID       uuid.UUID
	ParentServiceID pgtype.UUID
	Name            string
	Domain          pgtype.Text
	Qty             int
	CreatedAt       time.Time
}

type LineRow struct {
	ID                uuid.UUID
	OrderID           uuid.UUID
	ServiceID         uuid.UUID
	ItemUUID          uuid.UUID
	Position          int
	PackageID         uuid.UUID
	PricingID         uuid.UUID
	GroupID           uuid.UUID
	Name              string
	Domain            pgtype.Text
	Meta              map[string]string
	Options           map[string]string
	Qty               int
	UnitPrice         pgtype.Numeric
	SetupFee          pgtype.Numeric
	AffiliateExcluded bool
}

// ServicesToInfra returns one pending service per line, carrying the line's
// qty. Addon services point at the service of their parent item.
func ServicesToInfra(o *order.Order) []ServiceRow {
	rows := make([]ServiceRow, 0, len(o.Lines()))
	for _, l := range o.Lines() {
		row := ServiceRow{
			ID:        l.ServiceID,
			ClientID:  o.ClientID(),
			OrderID:   o.ID(),
			PackageID: l.PackageID,
			PricingID: l.PricingID,
			Name:      l.Name,
			Domain:    pgconv.NullableString(l.Domain),
			Qty:       l.Qty,
			CreatedAt: o.CreatedAt(),
		}
		if l.ParentItemUUID != nil {
			if parent, ok := o.ServiceIDOf(*l.ParentItemUUID); ok {
				row.ParentServiceID = pgtype.UUID{Bytes: parent, Valid: true}
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func LinesToInfra(o *order.Order) []LineRow {
	rows := make([]LineRow, 0, len(o.Lines()))
	for i, l := range o.Lines() {
		rows = append(rows, LineRow{
			ID:                l.ID,
			OrderID:           o.ID(),
			ServiceID:         l.ServiceID,
			ItemUUID:          l.ItemUUID,
			Position:          i,
			PackageID:         l.PackageID,
			PricingID:         l.PricingID,
			GroupID:           l.GroupID,
			Name:              l.Name,
			Domain:            pgconv.NullableString(l.Domain),
			Meta:              nonNil(l.Meta),
			Options:           nonNil(l.Options),
			Qty:               l.Qty,
			UnitPrice:         pgconv.DecimalToNumeric(l.UnitPrice),
			SetupFee:          pgconv.DecimalToNumeric(l.SetupFee),
			AffiliateExcluded: l.AffiliateExcluded,
		})
	}
	return rows
}

func nonNil(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
