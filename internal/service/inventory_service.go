package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"go-inventory-pos/internal/clock"
	"go-inventory-pos/internal/events"
	"go-inventory-pos/internal/model"
	"go-inventory-pos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	DefaultLogLimit = 100
	MaxLogLimit     = 500

	// MaxQuantity bounds every quantity and delta.
	MaxQuantity = math.MaxInt32
)

type InventoryService interface {
	ProcessTransaction(ctx context.Context, deltas map[uuid.UUID]int, actor model.Actor) (*TransactionResult, error)
	TransferStockToShop(ctx context.Context, productID uuid.UUID, quantity int, actor model.Actor) (*model.Product, error)
	Restock(ctx context.Context, productID uuid.UUID, quantity int, actor model.Actor) (*model.Product, error)
	AddProduct(ctx context.Context, req *ProductRequest, actor model.Actor) (*model.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req *ProductRequest, actor model.Actor) (*model.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID, actor model.Actor) error
	GetProducts(ctx context.Context) ([]model.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error)
	GetLogs(ctx context.Context, limit int) ([]model.LogEntry, error)
}

type ProductRequest struct {
	Name          string          `json:"name" validate:"required,max=255"`
	Brand         string          `json:"brand" validate:"max=100"`
	Category      string          `json:"category" validate:"max=100"`
	Price         decimal.Decimal `json:"price" validate:"gte=0"`
	StockQuantity int             `json:"stock_quantity" validate:"gte=0,lte=2147483647"`
	ShopQuantity  int             `json:"shop_quantity" validate:"gte=0,lte=2147483647"`
	Barcode       *string         `json:"barcode" validate:"omitempty,max=64"`
	ImageURL      *string         `json:"image_url" validate:"omitempty,max=2048"`
	ExpiryDate    *time.Time      `json:"expiry_date"`
}

func (r *ProductRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	// the column holds two decimal places
	r.Price = r.Price.Round(2)
	if r.Barcode != nil {
		b := strings.TrimSpace(*r.Barcode)
		if b == "" {
			r.Barcode = nil
		} else {
			r.Barcode = &b
		}
	}
	if r.ImageURL != nil && strings.TrimSpace(*r.ImageURL) == "" {
		r.ImageURL = nil
	}
	if r.ExpiryDate != nil {
		d := r.ExpiryDate.UTC()
		r.ExpiryDate = &d
	}
}

func (r *ProductRequest) applyTo(p *model.Product) {
	p.Name = r.Name
	p.Brand = r.Brand
	p.Category = r.Category
	p.Price = r.Price
	p.StockQuantity = r.StockQuantity
	p.ShopQuantity = r.ShopQuantity
	p.Barcode = r.Barcode
	p.ImageURL = r.ImageURL
	p.ExpiryDate = r.ExpiryDate
}

// TransactionResult describes a committed sale/return batch. Total is the
// cart's monetary value: sales count positive, returns negative.
type TransactionResult struct {
	Products []model.Product  `json:"products"`
	Entries  []model.LogEntry `json:"entries"`
	Total    decimal.Decimal  `json:"total"`
}

// EngineOptions bounds every mutating call.
type EngineOptions struct {
	TxTimeout   time.Duration
	MaxAttempts int
}

type inventoryService struct {
	productRepo repository.ProductRepository
	logRepo     repository.LogRepository
	db          *gorm.DB
	clock       clock.Clock
	bus         *events.Bus
	log         zerolog.Logger
	opts        EngineOptions
}

func NewInventoryService(
	productRepo repository.ProductRepository,
	logRepo repository.LogRepository,
	clk clock.Clock,
	bus *events.Bus,
	log zerolog.Logger,
	opts EngineOptions,
) InventoryService {
	if opts.TxTimeout <= 0 {
		opts.TxTimeout = 5 * time.Second
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 3
	}
	if clk == nil {
		clk = clock.NewMonotonic(nil)
	}
	return &inventoryService{
		productRepo: productRepo,
		logRepo:     logRepo,
		db:          productRepo.DB(),
		clock:       clk,
		bus:         bus,
		log:         log.With().Str("component", "inventory").Logger(),
		opts:        opts,
	}
}

// run executes fn in one store transaction under the engine timeout. A
// version conflict rolls the transaction back and fn is run again from
// scratch, so fn must not keep state between attempts.
func (s *inventoryService) run(ctx context.Context, op string, fn func(ctx context.Context, tx *gorm.DB) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.opts.TxTimeout)
	defer cancel()

	var err error
	for attempt := 1; attempt <= s.opts.MaxAttempts; attempt++ {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(ctx, tx)
		})
		if !errors.Is(err, repository.ErrVersionConflict) {
			break
		}
		s.log.Debug().Str("op", op).Int("attempt", attempt).Msg("version conflict, re-running")
	}
	return s.classify(op, err)
}

// classify passes domain errors through and folds everything else into
// ErrConflict or ErrStoreUnavailable.
func (s *inventoryService) classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var verr *ValidationError
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrInsufficientStock),
		errors.Is(err, ErrInvalidQuantity),
		errors.As(err, &verr):
		return err
	case errors.Is(err, repository.ErrVersionConflict):
		s.log.Warn().Str("op", op).Int("attempts", s.opts.MaxAttempts).Msg("giving up after repeated version conflicts")
		return fmt.Errorf("%s: %w", op, ErrConflict)
	}
	s.log.Error().Err(err).Str("op", op).Msg("store error")
	return unavailable(op, err)
}

func (s *inventoryService) publish(action, message string, actor model.Actor, data interface{}) {
	s.bus.Publish(events.TopicInventory, events.Event{
		Type:    "stock_update",
		Action:  action,
		Message: message,
		User:    events.ActorFrom(actor),
		Data:    data,
	})
}

func (s *inventoryService) entry(t model.LogType, details string, actor model.Actor, items ...model.LogItem) *model.LogEntry {
	return &model.LogEntry{
		Timestamp: s.clock.Now(),
		Type:      t,
		Details:   details,
		UserID:    actor.ID,
		UserName:  actor.Name,
		Items:     items,
	}
}

func item(p *model.Product, change int) model.LogItem {
	return model.LogItem{
		ProductID:      p.ID,
		ProductName:    p.Name,
		QuantityChange: change,
		Price:          p.Price,
	}
}

func sortedIDs(ids []uuid.UUID) []uuid.UUID {
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

// lockOne locks a single product or returns ErrNotFound.
func (s *inventoryService) lockOne(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Product, error) {
	products, err := s.productRepo.LockByIDs(ctx, tx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	return &products[0], nil
}

// ProcessTransaction applies a cart. A positive delta is units sold from the
// shop floor, a negative delta is units returned to it. Either every product
// is written and logged or nothing is.
func (s *inventoryService) ProcessTransaction(ctx context.Context, deltas map[uuid.UUID]int, actor model.Actor) (*TransactionResult, error) {
	var ids []uuid.UUID
	for id, d := range deltas {
		if d > MaxQuantity || d < -MaxQuantity {
			return nil, invalid("quantity for product %s must be within ±%d", id, MaxQuantity)
		}
		if d != 0 {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, invalid("transaction has no items")
	}
	ids = sortedIDs(ids)

	var result *TransactionResult
	err := s.run(ctx, "process transaction", func(ctx context.Context, tx *gorm.DB) error {
		result = nil

		products, err := s.productRepo.LockByIDs(ctx, tx, ids)
		if err != nil {
			return err
		}
		byID := make(map[uuid.UUID]*model.Product, len(products))
		for i := range products {
			byID[products[i].ID] = &products[i]
		}

		for _, id := range ids {
			p, ok := byID[id]
			if !ok {
				return fmt.Errorf("product %s: %w", id, ErrNotFound)
			}
			if d := deltas[id]; p.ShopQuantity-d < 0 {
				return &InsufficientStockError{
					ProductID:   p.ID,
					ProductName: p.Name,
					Pool:        "shop",
					Available:   p.ShopQuantity,
					Requested:   d,
				}
			}
		}

		res := &TransactionResult{Total: decimal.Zero}
		batch := uuid.New()
		var entries []*model.LogEntry
		for _, id := range ids {
			p, d := byID[id], deltas[id]
			if err := s.productRepo.SwapQuantities(ctx, tx, p, p.StockQuantity, p.ShopQuantity-d, actor.ID); err != nil {
				return err
			}
			verb := "Sold"
			if d < 0 {
				verb = "Returned"
			}
			e := s.entry(model.LogTransaction, fmt.Sprintf("%s %d x %s", verb, abs(d), p.Name), actor, item(p, -d))
			e.BatchID = &batch
			entries = append(entries, e)
			res.Total = res.Total.Add(p.Price.Mul(decimal.NewFromInt(int64(d))))
			res.Products = append(res.Products, *p)
		}
		if err := s.logRepo.Append(ctx, tx, entries...); err != nil {
			return err
		}
		for _, e := range entries {
			res.Entries = append(res.Entries, *e)
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", actor.ID).Int("products", len(ids)).Str("total", result.Total.String()).Msg("transaction processed")
	s.publish("transaction", fmt.Sprintf("%s processed a transaction of %d product(s)", actor.Name, len(ids)), actor, result.Products)
	return result, nil
}

// TransferStockToShop moves quantity units from the stockroom to the shop
// floor. The logged change is the shop pool's, so it is positive.
func (s *inventoryService) TransferStockToShop(ctx context.Context, productID uuid.UUID, quantity int, actor model.Actor) (*model.Product, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if quantity > MaxQuantity {
		return nil, invalid("quantity must be at most %d", MaxQuantity)
	}

	var out *model.Product
	err := s.run(ctx, "transfer stock", func(ctx context.Context, tx *gorm.DB) error {
		out = nil
		p, err := s.lockOne(ctx, tx, productID)
		if err != nil {
			return err
		}
		if quantity > p.StockQuantity {
			return &InsufficientStockError{
				ProductID:   p.ID,
				ProductName: p.Name,
				Pool:        "stock",
				Available:   p.StockQuantity,
				Requested:   quantity,
			}
		}
		if err := s.productRepo.SwapQuantities(ctx, tx, p, p.StockQuantity-quantity, p.ShopQuantity+quantity, actor.ID); err != nil {
			return err
		}
		e := s.entry(model.LogTransfer, fmt.Sprintf("Moved %d x %s from stock to shop", quantity, p.Name), actor, item(p, quantity))
		if err := s.logRepo.Append(ctx, tx, e); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish("transfer", fmt.Sprintf("%s moved %d units of '%s' to the shop", actor.Name, quantity, out.Name), actor, out)
	return out, nil
}

// Restock adds quantity units to the stockroom pool.
func (s *inventoryService) Restock(ctx context.Context, productID uuid.UUID, quantity int, actor model.Actor) (*model.Product, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if quantity > MaxQuantity {
		return nil, invalid("quantity must be at most %d", MaxQuantity)
	}

	var out *model.Product
	err := s.run(ctx, "restock", func(ctx context.Context, tx *gorm.DB) error {
		out = nil
		p, err := s.lockOne(ctx, tx, productID)
		if err != nil {
			return err
		}
		if err := s.productRepo.SwapQuantities(ctx, tx, p, p.StockQuantity+quantity, p.ShopQuantity, actor.ID); err != nil {
			return err
		}
		e := s.entry(model.LogUpdate, fmt.Sprintf("Restocked %d x %s", quantity, p.Name), actor, item(p, quantity))
		if err := s.logRepo.Append(ctx, tx, e); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish("restock", fmt.Sprintf("%s restocked %d units of '%s'", actor.Name, quantity, out.Name), actor, out)
	return out, nil
}

// checkBarcode rejects a barcode already held by a product other than self.
func (s *inventoryService) checkBarcode(ctx context.Context, tx *gorm.DB, barcode *string, self uuid.UUID) error {
	if barcode == nil {
		return nil
	}
	existing, err := s.productRepo.FindByBarcode(ctx, tx, *barcode)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != self {
		return invalid("barcode %q is already used by %q", *barcode, existing.Name)
	}
	return nil
}

func (s *inventoryService) AddProduct(ctx context.Context, req *ProductRequest, actor model.Actor) (*model.Product, error) {
	req.normalize()
	if err := validate(req); err != nil {
		return nil, err
	}

	var out *model.Product
	err := s.run(ctx, "add product", func(ctx context.Context, tx *gorm.DB) error {
		out = nil
		if err := s.checkBarcode(ctx, tx, req.Barcode, uuid.Nil); err != nil {
			return err
		}
		p := &model.Product{}
		req.applyTo(p)
		p.CreatedBy = actor.ID
		p.UpdatedBy = actor.ID
		if err := s.productRepo.Create(ctx, tx, p); err != nil {
			return err
		}
		e := s.entry(model.LogCreate, fmt.Sprintf("Created product %s", p.Name), actor, item(p, p.TotalQuantity()))
		if err := s.logRepo.Append(ctx, tx, e); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish("product_created", fmt.Sprintf("%s created product '%s'", actor.Name, out.Name), actor, out)
	return out, nil
}

// UpdateProduct overwrites every editable field. The logged change is the
// difference of total units computed from the stored row, not from
// anything the caller sent.
func (s *inventoryService) UpdateProduct(ctx context.Context, id uuid.UUID, req *ProductRequest, actor model.Actor) (*model.Product, error) {
	req.normalize()
	if err := validate(req); err != nil {
		return nil, err
	}

	var out *model.Product
	err := s.run(ctx, "update product", func(ctx context.Context, tx *gorm.DB) error {
		out = nil
		p, err := s.lockOne(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := s.checkBarcode(ctx, tx, req.Barcode, p.ID); err != nil {
			return err
		}

		before := p.TotalQuantity()
		req.applyTo(p)
		if err := s.productRepo.SwapDetails(ctx, tx, p, actor.ID); err != nil {
			return err
		}
		e := s.entry(model.LogUpdate, fmt.Sprintf("Updated product %s", p.Name), actor, item(p, p.TotalQuantity()-before))
		if err := s.logRepo.Append(ctx, tx, e); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish("product_updated", fmt.Sprintf("%s updated product '%s'", actor.Name, out.Name), actor, out)
	return out, nil
}

// DeleteProduct logs the units that leave with the product and removes it.
func (s *inventoryService) DeleteProduct(ctx context.Context, id uuid.UUID, actor model.Actor) error {
	var name string
	err := s.run(ctx, "delete product", func(ctx context.Context, tx *gorm.DB) error {
		p, err := s.lockOne(ctx, tx, id)
		if err != nil {
			return err
		}
		e := s.entry(model.LogDelete, fmt.Sprintf("Deleted product %s", p.Name), actor, item(p, -p.TotalQuantity()))
		if err := s.logRepo.Append(ctx, tx, e); err != nil {
			return err
		}
		if err := s.productRepo.Delete(ctx, tx, p.ID); err != nil {
			return err
		}
		name = p.Name
		return nil
	})
	if err != nil {
		return err
	}

	s.publish("product_deleted", fmt.Sprintf("%s deleted product '%s'", actor.Name, name), actor, map[string]interface{}{"id": id})
	return nil
}

func (s *inventoryService) GetProducts(ctx context.Context) ([]model.Product, error) {
	products, err := s.productRepo.FindAll(ctx)
	if err != nil {
		return nil, s.classify("list products", err)
	}
	return products, nil
}

func (s *inventoryService) GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	p, err := s.productRepo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, s.classify("get product", err)
	}
	return p, nil
}

// GetLogs returns the newest entries first. limit <= 0 means the default;
// anything above MaxLogLimit is capped.
func (s *inventoryService) GetLogs(ctx context.Context, limit int) ([]model.LogEntry, error) {
	if limit <= 0 {
		limit = DefaultLogLimit
	}
	if limit > MaxLogLimit {
		limit = MaxLogLimit
	}
	entries, err := s.logRepo.FindRecent(ctx, limit)
	if err != nil {
		return nil, s.classify("list logs", err)
	}
	return entries, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
