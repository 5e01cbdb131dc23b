package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"sfms-backend/internal/application/stock"
	"sfms-backend/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SearchLimit caps staff search results.
const SearchLimit = 200

type Service struct {
	DB *gorm.DB
}

// PatchInput carries the optional fields of a staff edit.
type PatchInput struct {
	Name  *string
	Stock *int
	Total *int
}

func (s *Service) Get(ctx context.Context, name string) (*domain.Equipment, error) {
	var eq domain.Equipment
	if err := s.DB.WithContext(ctx).Where("name = ?", strings.TrimSpace(name)).First(&eq).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &eq, nil
}

func (s *Service) GetByID(ctx context.Context, id uint) (*domain.Equipment, error) {
	var eq domain.Equipment
	if err := s.DB.WithContext(ctx).First(&eq, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &eq, nil
}

// Upsert creates the equipment or overwrites its stock. Total only ever grows:
// it becomes the max of the existing total, the given total and the new stock.
func (s *Service) Upsert(ctx context.Context, name string, stockValue int, total *int) (*domain.Equipment, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrEquipmentNameRequired
	}
	if stockValue < 0 || (total != nil && *total < 0) {
		return nil, domain.ErrInvalidQuantity
	}

	var out domain.Equipment
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var eq domain.Equipment
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("name = ?", name).First(&eq).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			eq = domain.Equipment{Name: name, Stock: stockValue, Total: raiseTotal(0, total, stockValue)}
			if err := tx.Create(&eq).Error; err != nil {
				return fmt.Errorf("create equipment: %w", err)
			}
			out = eq
			return stock.WriteEvent(ctx, tx, eq, domain.SourceAdminUpsert, 0, eq.Stock, map[string]interface{}{"created": true})
		}
		if err != nil {
			return err
		}

		before := eq.Stock
		newTotal := raiseTotal(eq.Total, total, stockValue)
		if err := tx.Model(&eq).Updates(map[string]interface{}{"stock": stockValue, "total": newTotal}).Error; err != nil {
			return fmt.Errorf("update equipment: %w", err)
		}
		eq.Stock, eq.Total = stockValue, newTotal
		out = eq
		return stock.WriteEvent(ctx, tx, eq, domain.SourceAdminUpsert, before, eq.Stock, nil)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Patch edits an equipment row by id. Stock and total follow the same
// raising rule as Upsert.
func (s *Service) Patch(ctx context.Context, id uint, in PatchInput) (*domain.Equipment, error) {
	if (in.Stock != nil && *in.Stock < 0) || (in.Total != nil && *in.Total < 0) {
		return nil, domain.ErrInvalidQuantity
	}
	var name string
	if in.Name != nil {
		name = strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.ErrEquipmentNameRequired
		}
	}

	var out domain.Equipment
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var eq domain.Equipment
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&eq, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}

		if name != "" && name != eq.Name {
			var clash int64
			if err := tx.Model(&domain.Equipment{}).Where("name = ? AND id <> ?", name, eq.ID).Count(&clash).Error; err != nil {
				return err
			}
			if clash > 0 {
				return domain.ErrDuplicateEquipment
			}
		}

		before := eq.Stock
		updates := map[string]interface{}{}
		if name != "" {
			updates["name"] = name
		}
		newStock := eq.Stock
		if in.Stock != nil {
			newStock = *in.Stock
			updates["stock"] = newStock
		}
		if in.Stock != nil || in.Total != nil {
			updates["total"] = raiseTotal(eq.Total, in.Total, newStock)
		}
		if len(updates) == 0 {
			out = eq
			return nil
		}
		if err := tx.Model(&eq).Updates(updates).Error; err != nil {
			return fmt.Errorf("patch equipment: %w", err)
		}
		if err := tx.First(&eq, id).Error; err != nil {
			return err
		}
		out = eq
		return stock.WriteEvent(ctx, tx, eq, domain.SourceAdminPatch, before, eq.Stock, nil)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes equipment by name. Ledger rows keep their history with a
// null equipment reference.
func (s *Service) Delete(ctx context.Context, name string) (bool, error) {
	eq, err := s.Get(ctx, name)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return s.DeleteByID(ctx, eq.ID)
}

func (s *Service) DeleteByID(ctx context.Context, id uint) (bool, error) {
	deleted := false
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.BorrowRecord{}).Where("equipment_id = ?", id).Update("equipment_id", nil).Error; err != nil {
			return fmt.Errorf("detach ledger rows: %w", err)
		}
		if err := tx.Model(&domain.StockEvent{}).Where("equipment_id = ?", id).Update("equipment_id", nil).Error; err != nil {
			return fmt.Errorf("detach stock events: %w", err)
		}
		res := tx.Delete(&domain.Equipment{}, id)
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

// Search is a case-insensitive substring match on name.
// likeEscaper makes LIKE wildcards in a keyword match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func (s *Service) Search(ctx context.Context, keyword string) ([]domain.Equipment, error) {
	q := s.DB.WithContext(ctx).Model(&domain.Equipment{})
	if kw := strings.TrimSpace(keyword); kw != "" {
		q = q.Where(`LOWER(name) LIKE ? ESCAPE '\'`, "%"+likeEscaper.Replace(strings.ToLower(kw))+"%")
	}
	var items []domain.Equipment
	if err := q.Order("name ASC").Limit(SearchLimit).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Service) ListAll(ctx context.Context) ([]domain.Equipment, error) {
	var items []domain.Equipment
	if err := s.DB.WithContext(ctx).Order("name ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func raiseTotal(existing int, given *int, stockValue int) int {
	total := existing
	if given != nil && *given > total {
		total = *given
	}
	if stockValue > total {
		total = stockValue
	}
	return total
}
