package use_cases

import (
	"context"
	"sort"

	"github.com/tradezone/marketplace/internal/application/ports"
	"github.com/tradezone/marketplace/internal/domain/cart"
	domainErrors "github.com/tradezone/marketplace/internal/domain/errors"
	"github.com/tradezone/marketplace/internal/domain/stock"
	"github.com/tradezone/marketplace/internal/infrastructure/monitoring"
	"github.com/tradezone/marketplace/internal/pkg/logger"
)

// SalesUseCase reads purchased carts as flattened sale lines for reporting,
// and handles per-line cancellation with stock restoration.
type SalesUseCase struct {
	cartRepo    ports.CartRepository
	productRepo ports.ProductRepository
	users       ports.UserDirectory
	ledger      *stock.Ledger
	log         *logger.Logger
}

func NewSalesUseCase(
	cartRepo ports.CartRepository,
	productRepo ports.ProductRepository,
	users ports.UserDirectory,
	ledger *stock.Ledger,
	log *logger.Logger,
) *SalesUseCase {
	return &SalesUseCase{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		users:       users,
		ledger:      ledger,
		log:         log,
	}
}

// SalesPage is one page of the flattened sale-line listing.
type SalesPage struct {
	Lines      []cart.SaleLine `json:"lines"`
	TotalCount int             `json:"total_count"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
}

// CancelSale cancels one purchased line and restores its stock. Permitted
// for admins and for the product's manager. Cancelling an already-cancelled
// line is a no-op: the stock must not be restored twice.
func (uc *SalesUseCase) CancelSale(ctx context.Context, cartID, productID string, actingUserID int64, isAdmin bool) error {
	crt, err := uc.cartRepo.FindByID(ctx, cartID)
	if err != nil {
		return domainErrors.ErrSaleNotFound
	}

	line := crt.FindLine(productID)
	if line == nil {
		return domainErrors.ErrLineNotFound
	}

	p, err := uc.productRepo.FindByID(ctx, productID)
	if err != nil {
		return domainErrors.ErrProductNotFound
	}

	if !isAdmin && !p.ManagedBy(actingUserID) {
		return domainErrors.ErrUnauthorized
	}

	if line.IsCancelled() {
		return nil
	}

	line.Status = cart.StatusCancelled
	if line.Quantity > 0 {
		if err := uc.ledger.Release(ctx, productID, line.Quantity); err != nil {
			return err
		}
	}
	if err := uc.cartRepo.Save(ctx, crt); err != nil {
		return err
	}

	monitoring.SaleCancellationsTotal.Inc()
	uc.log.Info("Sale cancelled", "cart_id", cartID, "product_id", productID, "quantity", line.Quantity)
	return nil
}

// ListSales flattens purchased carts into sale lines, newest cart first.
// Non-admin callers only see lines of products they manage. Lines whose
// product or manager can no longer be resolved are skipped, not fatal.
func (uc *SalesUseCase) ListSales(ctx context.Context, managerID *int64, isAdmin bool, page, pageSize int) (*SalesPage, error) {
	if page < 0 {
		page = 0
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	all, err := uc.collectSaleLines(ctx, managerID, isAdmin)
	if err != nil {
		return nil, err
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	start := page * pageSize
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}
	lines := []cart.SaleLine{}
	if start < len(all) {
		lines = all[start:end]
	}

	return &SalesPage{
		Lines:      lines,
		TotalCount: len(all),
		Page:       page,
		PageSize:   pageSize,
	}, nil
}

// GetSaleLine resolves a single purchased line with the same authorization
// rule as cancellation.
func (uc *SalesUseCase) GetSaleLine(ctx context.Context, cartID, productID string, actingUserID int64, isAdmin bool) (*cart.SaleLine, error) {
	crt, err := uc.cartRepo.FindByID(ctx, cartID)
	if err != nil {
		return nil, domainErrors.ErrSaleNotFound
	}

	line := crt.FindLine(productID)
	if line == nil {
		return nil, domainErrors.ErrLineNotFound
	}

	p, err := uc.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, domainErrors.ErrProductNotFound
	}

	if !isAdmin && !p.ManagedBy(actingUserID) {
		return nil, domainErrors.ErrUnauthorized
	}

	manager, err := uc.users.FindByID(ctx, p.ManagerID)
	if err != nil {
		return nil, domainErrors.ErrUserNotFound
	}

	sl := buildSaleLine(crt, line, p.Name, manager.ID, manager.Username)
	return &sl, nil
}

// TotalEarnings sums line totals over the caller's visible sales. A request
// with no manager filter from a non-admin has no visible scope and yields 0.
func (uc *SalesUseCase) TotalEarnings(ctx context.Context, managerID *int64, isAdmin bool) (float64, error) {
	if managerID == nil && !isAdmin {
		return 0, nil
	}

	lines, err := uc.collectSaleLines(ctx, managerID, isAdmin)
	if err != nil {
		return 0, err
	}

	total := 0.0
	for _, line := range lines {
		total += line.Total
	}
	return total, nil
}

func (uc *SalesUseCase) collectSaleLines(ctx context.Context, managerID *int64, isAdmin bool) ([]cart.SaleLine, error) {
	purchased, err := uc.cartRepo.FindPurchased(ctx)
	if err != nil {
		return nil, err
	}

	lines := make([]cart.SaleLine, 0)
	for _, crt := range purchased {
		for i := range crt.Lines {
			line := &crt.Lines[i]

			p, err := uc.productRepo.FindByID(ctx, line.ProductID)
			if err != nil {
				uc.log.Warn("Skipping sale line, product unresolvable",
					"cart_id", crt.ID,
					"product_id", line.ProductID,
					"error", err.Error(),
				)
				continue
			}

			if !isAdmin {
				if managerID == nil || p.ManagerID != *managerID {
					continue
				}
			}

			managerName := ""
			if manager, err := uc.users.FindByID(ctx, p.ManagerID); err == nil {
				managerName = manager.Username
			} else {
				uc.log.Warn("Sale line manager unresolvable", "manager_id", p.ManagerID)
			}

			lines = append(lines, buildSaleLine(crt, line, p.Name, p.ManagerID, managerName))
		}
	}
	return lines, nil
}

func buildSaleLine(crt *cart.Cart, line *cart.Line, productName string, managerID int64, managerName string) cart.SaleLine {
	return cart.SaleLine{
		CartID:      crt.ID,
		ProductID:   line.ProductID,
		ProductName: productName,
		Quantity:    line.Quantity,
		UnitPrice:   line.UnitPrice,
		Total:       line.Total,
		Status:      line.Status,
		ClientName:  crt.Client.Name,
		ClientEmail: crt.Client.Email,
		ManagerID:   managerID,
		ManagerName: managerName,
		CreatedAt:   crt.CreatedAt,
	}
}
