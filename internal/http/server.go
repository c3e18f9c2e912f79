package http

import (
	"context"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/thechaz2/budget-app/internal/cache"
	"github.com/thechaz2/budget-app/internal/core"
	"github.com/thechaz2/budget-app/internal/ledger"
	applog "github.com/thechaz2/budget-app/internal/log"
	"github.com/thechaz2/budget-app/internal/middleware/ratelimit"
	"github.com/thechaz2/budget-app/internal/middleware/security"
	"github.com/thechaz2/budget-app/internal/middleware/trace"
	appweb "github.com/thechaz2/budget-app/web"
)

// Options tunes server construction. Zero values fall back to defaults.
type Options struct {
	Logger            *applog.Logger
	RequestsPerMinute int
	CacheTTL          time.Duration
}

// Server serves the budgeting JSON API and the embedded static front end.
type Server struct {
	http.Server

	months  ledger.MonthService
	bills   ledger.BillService
	incomes ledger.MoneyInService

	limiter *ratelimit.Limiter
	tracer  *trace.Middleware

	// Read-through caches for the list endpoints, invalidated on every
	// mutation that can touch their keys.
	cacheManager  *cache.Manager
	monthsCache   *cache.LRU[[]core.Month]
	billsCache    *cache.LRU[[]core.Bill]
	moneyInsCache *cache.LRU[[]core.MoneyIn]

	shutdownOnce sync.Once
}

const monthsCacheKey = "months"

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, months ledger.MonthService, bills ledger.BillService, incomes ledger.MoneyInService, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = applog.New(applog.DefaultConfig())
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}

	mux := http.NewServeMux()

	s := &Server{
		months:  months,
		bills:   bills,
		incomes: incomes,
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RequestsPerMinute,
		}),
		tracer:        trace.NewMiddleware(trace.ExtractClientIP),
		cacheManager:  cache.NewManager(),
		monthsCache:   cache.NewLRU[[]core.Month](10, opts.CacheTTL),
		billsCache:    cache.NewLRU[[]core.Bill](100, opts.CacheTTL),
		moneyInsCache: cache.NewLRU[[]core.MoneyIn](100, opts.CacheTTL),
	}

	s.cacheManager.Register(s.monthsCache)
	s.cacheManager.Register(s.billsCache)
	s.cacheManager.Register(s.moneyInsCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("/months", s.handleListMonths)
	mux.HandleFunc("/bills", s.handleListBills)
	mux.HandleFunc("/money_ins", s.handleListMoneyIns)
	mux.HandleFunc("/add_month", s.handleAddMonth)
	mux.HandleFunc("/delete_month", s.handleDeleteMonth)
	mux.HandleFunc("/add_bill", s.handleAddBill)
	mux.HandleFunc("/update_bill", s.handleUpdateBill)
	mux.HandleFunc("/add_money_in", s.handleAddMoneyIn)
	mux.HandleFunc("/update_money_in", s.handleUpdateMoneyIn)
	mux.HandleFunc("/update_balance", s.handleUpdateBalance)
	mux.HandleFunc("/delete_bill/", s.handleDeleteBill)
	mux.HandleFunc("/delete_money_in/", s.handleDeleteMoneyIn)
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)
	mux.HandleFunc("/favicon.ico", handleFavicon)
	mux.HandleFunc("/", s.handleRoot)

	// Middleware chain, outermost first: context logger, tracing,
	// security headers, rate limiting.
	var handler http.Handler = mux
	handler = s.limiter.Middleware(trace.ExtractClientIP)(handler)
	handler = security.Middleware(security.DefaultHeadersConfig())(handler)
	handler = s.tracer.Middleware(handler)
	handler = applog.Middleware(opts.Logger.WithComponent(applog.ComponentHTTP))(handler)

	s.Server = http.Server{
		Addr:    addr,
		Handler: handler,
	}

	return s
}

// Shutdown stops the HTTP server and the background cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func handleFavicon(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// handleRoot serves the embedded static front end for unmatched GET
// paths; anything else is an unknown API route.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}

	sub, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to mount embedded static FS", "error", err)
		writeError(w, http.StatusInternalServerError, "static assets unavailable")
		return
	}
	http.FileServerFS(sub).ServeHTTP(w, r)
}

func (s *Server) invalidateMonths() {
	s.monthsCache.Delete(monthsCacheKey)
}

func (s *Server) invalidateBills(ym string) {
	if ym == "" {
		// Mutation by bare id: the owning month is unknown here.
		s.billsCache.Purge()
		return
	}
	s.billsCache.Delete(ym)
}

func (s *Server) invalidateMoneyIns(ym string) {
	if ym == "" {
		s.moneyInsCache.Purge()
		return
	}
	s.moneyInsCache.Delete(ym)
}
