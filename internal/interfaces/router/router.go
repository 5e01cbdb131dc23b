package router

import (
	"errors"
	"net/http"

	"sfms-backend/internal/application/borrowing"
	"sfms-backend/internal/application/checkins"
	healthsvc "sfms-backend/internal/application/health"
	"sfms-backend/internal/application/inventory"
	"sfms-backend/internal/application/reports"
	"sfms-backend/internal/application/scancodes"
	"sfms-backend/internal/application/stock"
	"sfms-backend/internal/clock"
	"sfms-backend/internal/config"
	"sfms-backend/internal/constants"
	"sfms-backend/internal/infrastructure/database"
	authhandler "sfms-backend/internal/interfaces/handlers/auth"
	borrowhandler "sfms-backend/internal/interfaces/handlers/borrowing"
	checkinhandler "sfms-backend/internal/interfaces/handlers/checkins"
	equiphandler "sfms-backend/internal/interfaces/handlers/equipment"
	healthhandler "sfms-backend/internal/interfaces/handlers/health"
	reporthandler "sfms-backend/internal/interfaces/handlers/reports"
	scanhandler "sfms-backend/internal/interfaces/handlers/scancodes"
	"sfms-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

var ErrDatabaseURLRequired = errors.New("DATABASE_URL is required")

const defaultRedisURL = "redis://localhost:6379/0"

// CreateApp opens storage, runs migrations and wires every route.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	if cfg.DatabaseURL == "" {
		return nil, nil, nil, ErrDatabaseURLRequired
	}
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := database.AutoMigrate(db); err != nil {
		return nil, nil, nil, err
	}

	redisURL := cfg.RedisURL
	if redisURL == "" {
		redisURL = defaultRedisURL
	}
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, nil, nil, err
	}
	rdb := redis.NewClient(opt)

	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.Recovery())
	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix:  cfg.FrontendURLEndsWith,
		DevPassword:    cfg.DevPassword,
		AllowLocalhost: !cfg.IsProduction(),
	}))
	app.Use(middleware.RateLimit(cfg.RateLimitMax))
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())
	app.Use(middleware.HealthMarker(rdb))

	hh := &healthhandler.Handlers{
		Rdb:            rdb,
		DB:             &healthsvc.GormPinger{DB: db},
		InventoryDB:    db,
		HealthAdminKey: cfg.HealthAdminKey,
	}
	app.Get("/health", hh.Plain)
	app.Get("/health/json", hh.JSON)
	app.Get("/health/reset", hh.Reset)

	loc := cfg.Location()
	clk := clock.NewSystem()
	ledger := &checkins.Ledger{DB: db, Location: loc}
	guard := &checkins.Guard{Flags: middleware.NewRedisFlagStore(rdb), Ledger: ledger, Clock: clk}

	api := app.Group("/api/v1", middleware.Session(middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.IsProduction(),
	}, rdb))

	// Session
	ah := &authhandler.Handlers{Rdb: rdb, Guard: guard, StaffKey: cfg.StaffKey}
	api.Post("/session", ah.Start)
	api.Get("/session", ah.Me)
	api.Delete("/session", ah.End)

	// Equipment
	eh := &equiphandler.Handlers{Service: &inventory.Service{DB: db}}
	api.Get("/equipments", eh.List)
	staffEquip := api.Group("/staff/equipments", middleware.AuthorizePermission(constants.ManageEquipment))
	staffEquip.Get("/", eh.Search)
	staffEquip.Post("/", eh.Create)
	staffEquip.Patch("/:id", eh.Patch)
	staffEquip.Delete("/:id", eh.Delete)

	// Borrow ledger
	bh := &borrowhandler.Handlers{Service: &borrowing.Service{DB: db, Reconciler: stock.NewReconciler(), Clock: clk}}
	api.Post("/borrow-return", middleware.AuthorizePermission(constants.BorrowEquipment), bh.BorrowReturn)
	api.Post("/equipment/return", middleware.AuthorizePermission(constants.BorrowEquipment), bh.Return)
	staffLedger := api.Group("/staff/borrow-records", middleware.AuthorizePermission(constants.ManageLedger))
	staffLedger.Get("/", bh.ListRecords)
	staffLedger.Patch("/:id", bh.UpdateRecord)
	staffLedger.Delete("/:id", bh.DeleteRecord)

	// Facility check-ins
	ch := &checkinhandler.Handlers{Guard: guard, Ledger: ledger, Clock: clk, Location: loc}
	api.Post("/check-event", middleware.AuthorizePermission(constants.RecordCheckin), ch.CheckEvent)
	api.Post("/pool/checkout", middleware.AuthorizePermission(constants.RecordCheckin), ch.PoolCheckout)
	api.Get("/session/pool-lock", ch.PoolLock)
	api.Get("/checkins", middleware.AuthorizePermission(constants.ViewReports), ch.List)
	api.Get("/checkins/summary", middleware.AuthorizePermission(constants.ViewReports), ch.Summary)
	api.Get("/presence", middleware.AuthorizePermission(constants.ViewReports), ch.Presence)

	// Reports
	rh := &reporthandler.Handlers{Service: &reports.Service{DB: db, Location: loc}, Clock: clk, Location: loc}
	api.Get("/borrow-stats", middleware.AuthorizePermission(constants.ViewReports), rh.BorrowStats)
	api.Get("/borrow-stats/export", middleware.AuthorizePermission(constants.ViewReports), rh.Export)

	// Scan codes
	sh := &scanhandler.Handlers{Service: &scancodes.Service{DB: db}, Checks: ch}
	api.Post("/staff/scan-codes", middleware.AuthorizePermission(constants.ManageScanCodes), sh.SetScanCode)
	scan := api.Group("/scan", middleware.ScanRateLimit())
	scan.Post("/check-in", sh.CheckIn)
	scan.Post("/check-out", sh.CheckOut)

	return app, db, rdb, nil
}

func Handler(app *fiber.App) http.Handler {
	return adaptor.FiberApp(app)
}
