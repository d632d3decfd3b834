// Package services содержит справочник стран: кеш снимка REST Countries,
// поиск по коду и сравнение стран.
package services

import (
	"context"
	"log/slog"
	"regexp"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/geobee/geobee/internal/lib/apperr"
	"github.com/geobee/geobee/internal/lib/sl"
	"github.com/geobee/geobee/internal/models"
)

// MaxCompareCodes максимальное число стран в одном сравнении.
const MaxCompareCodes = 5

const (
	snapshotKey         = "countries"
	defaultFetchTimeout = 5 * time.Second
	defaultStoreTimeout = time.Second
	sourceUpstream      = "upstream"
	sourceStore         = "store"
)

var (
	ErrInvalidCode     = apperr.New(apperr.InvalidArgument, "Invalid country code")
	ErrCountryNotFound = apperr.New(apperr.NotFound, "Country not found")
	ErrCodesRequired   = apperr.New(apperr.InvalidArgument, "Query 'codes' is required")
	ErrNoValidCodes    = apperr.New(apperr.InvalidArgument, "No valid ISO3 codes provided")
	ErrTooManyCodes    = apperr.New(apperr.InvalidArgument, "Too many codes (max 5)")
	ErrNoMatches       = apperr.New(apperr.NotFound, "No matching countries found")
	ErrUpstreamFailed  = apperr.New(apperr.UpstreamUnavailable, "Failed to load country data")
	codePattern        = regexp.MustCompile(`^[A-Za-z]{3}$`)
	upperCodePattern   = regexp.MustCompile(`^[A-Z]{3}$`)
)

// Fetcher загружает весь справочник из внешнего источника.
type Fetcher interface {
	FetchAll(ctx context.Context) ([]models.Country, error)
}

// Store общее хранилище снимков между экземплярами (redis).
type Store interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// Observer получает события кеша для метрик.
type Observer interface {
	Hit()
	Miss()
	Refreshed(source string, err error)
}

type nopObserver struct{}

func (nopObserver) Hit()                    {}
func (nopObserver) Miss()                   {}
func (nopObserver) Refreshed(string, error) {}

// snapshot неизменяемый после создания.
type snapshot struct {
	countries []models.Country
	byCode    map[string]int
	expiresAt time.Time
}

// StoredSnapshot формат снимка в общем хранилище.
type StoredSnapshot struct {
	Countries []models.Country `json:"countries"`
	FetchedAt time.Time        `json:"fetchedAt"`
}

// Option настраивает Service.
type Option func(*Service)

// WithClock подменяет источник времени.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithStore подключает общее хранилище снимков.
func WithStore(store Store) Option {
	return func(s *Service) { s.store = store }
}

// WithObserver подключает наблюдателя для метрик.
func WithObserver(o Observer) Option {
	return func(s *Service) { s.observer = o }
}

// WithFetchTimeout ограничивает время одной загрузки справочника.
func WithFetchTimeout(d time.Duration) Option {
	return func(s *Service) { s.fetchTimeout = d }
}

// Service кеширует справочник стран в памяти на время ttl.
type Service struct {
	log          *slog.Logger
	fetcher      Fetcher
	store        Store
	observer     Observer
	ttl          time.Duration
	fetchTimeout time.Duration
	now          func() time.Time

	mu    sync.RWMutex
	snap  *snapshot
	group singleflight.Group
}

// New создаёт справочник стран.
func New(log *slog.Logger, fetcher Fetcher, ttl time.Duration, opts ...Option) *Service {
	s := &Service{
		log:          log,
		fetcher:      fetcher,
		observer:     nopObserver{},
		ttl:          ttl,
		fetchTimeout: defaultFetchTimeout,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetAll возвращает справочник, отсортированный по названию.
// Возвращаемый срез общий для всех вызывающих и не должен изменяться.
func (s *Service) GetAll(ctx context.Context) ([]models.Country, error) {
	snap, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	return snap.countries, nil
}

// GetByCode ищет страну по ISO3-коду без учёта регистра.
// Код должен состоять ровно из трёх латинских букв, пробелы не допускаются.
func (s *Service) GetByCode(ctx context.Context, code string) (*models.Country, error) {
	if !codePattern.MatchString(code) {
		return nil, ErrInvalidCode
	}
	code = strings.ToUpper(code)

	snap, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	i, ok := snap.byCode[code]
	if !ok {
		return nil, ErrCountryNotFound
	}
	country := snap.countries[i]
	return &country, nil
}

// Compare разбирает список кодов через запятую и возвращает проекции
// найденных стран в порядке запроса.
func (s *Service) Compare(ctx context.Context, raw string) ([]models.Comparison, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrCodesRequired
	}
	codes := ParseCodes(raw)
	if len(codes) == 0 {
		return nil, ErrNoValidCodes
	}
	if len(codes) > MaxCompareCodes {
		return nil, ErrTooManyCodes
	}

	snap, err := s.current(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]models.Comparison, 0, len(codes))
	for _, code := range codes {
		if i, ok := snap.byCode[code]; ok {
			result = append(result, Project(snap.countries[i]))
		}
	}
	if len(result) == 0 {
		return nil, ErrNoMatches
	}
	return result, nil
}

// Invalidate сбрасывает снимок в памяти и в общем хранилище.
func (s *Service) Invalidate(ctx context.Context) {
	const op = "services.country.Invalidate"

	s.mu.Lock()
	s.snap = nil
	s.mu.Unlock()

	if s.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, defaultStoreTimeout)
	defer cancel()
	if err := s.store.Invalidate(ctx, snapshotKey); err != nil {
		s.log.Warn("failed to invalidate shared snapshot", slog.String("op", op), sl.Err(err))
	}
}

// Warm заранее загружает справочник. Ошибка только логируется вызывающим.
func (s *Service) Warm(ctx context.Context) error {
	const op = "services.country.Warm"

	countries, err := s.GetAll(ctx)
	if err != nil {
		s.log.Error("failed to warm country cache", slog.String("op", op), sl.Err(err))
		return err
	}
	s.log.Info("country cache warmed", slog.String("op", op), slog.Int("countries", len(countries)))
	return nil
}

// Refresh сбрасывает снимок вместе с записью общего хранилища и загружает
// справочник из источника заново.
func (s *Service) Refresh(ctx context.Context) error {
	s.Invalidate(ctx)
	return s.Warm(ctx)
}

func (s *Service) fresh() *snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap != nil && s.now().Before(s.snap.expiresAt) {
		return s.snap
	}
	return nil
}

func (s *Service) current(ctx context.Context) (*snapshot, error) {
	if snap := s.fresh(); snap != nil {
		s.observer.Hit()
		return snap, nil
	}
	s.observer.Miss()

	ch := s.group.DoChan(snapshotKey, func() (any, error) {
		return s.refresh(ctx)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*snapshot), nil
	}
}

// refresh выполняется не более одного раза одновременно.
func (s *Service) refresh(ctx context.Context) (*snapshot, error) {
	const op = "services.country.refresh"
	log := s.log.With(slog.String("op", op))

	// пока ждали своей очереди, снимок мог обновить предыдущий вызов
	if snap := s.fresh(); snap != nil {
		return snap, nil
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.fetchTimeout)
	defer cancel()

	if snap := s.loadFromStore(ctx, log); snap != nil {
		s.swap(snap)
		return snap, nil
	}

	countries, err := s.fetcher.FetchAll(ctx)
	s.observer.Refreshed(sourceUpstream, err)
	if err != nil {
		log.Error("failed to fetch countries", sl.Err(err))
		if _, ok := apperr.As(err); ok {
			return nil, err
		}
		return nil, apperr.Wrap(apperr.UpstreamUnavailable, ErrUpstreamFailed.Message, err)
	}

	fetchedAt := s.now()
	snap := build(countries, fetchedAt.Add(s.ttl))
	s.swap(snap)
	log.Info("country cache refreshed", slog.Int("countries", len(snap.countries)))

	s.saveToStore(ctx, log, StoredSnapshot{Countries: snap.countries, FetchedAt: fetchedAt})
	return snap, nil
}

func (s *Service) swap(snap *snapshot) {
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
}

func (s *Service) loadFromStore(ctx context.Context, log *slog.Logger) *snapshot {
	if s.store == nil {
		return nil
	}
	var stored StoredSnapshot
	found, err := s.store.Get(ctx, snapshotKey, &stored)
	if err != nil {
		s.observer.Refreshed(sourceStore, err)
		log.Warn("failed to read shared snapshot", sl.Err(err))
		return nil
	}
	if !found {
		return nil
	}
	expiresAt := stored.FetchedAt.Add(s.ttl)
	if !s.now().Before(expiresAt) {
		return nil
	}
	s.observer.Refreshed(sourceStore, nil)
	log.Debug("country cache loaded from shared store", slog.Int("countries", len(stored.Countries)))
	return build(stored.Countries, expiresAt)
}

func (s *Service) saveToStore(ctx context.Context, log *slog.Logger, stored StoredSnapshot) {
	if s.store == nil {
		return
	}
	if err := s.store.Set(ctx, snapshotKey, stored, s.ttl); err != nil {
		log.Warn("failed to write shared snapshot", sl.Err(err))
	}
}

// build сортирует записи по названию с учётом локали и строит индекс по коду.
func build(countries []models.Country, expiresAt time.Time) *snapshot {
	sorted := slices.Clone(countries)
	col := collate.New(language.Und)
	slices.SortStableFunc(sorted, func(a, b models.Country) int {
		if c := col.CompareString(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.Code, b.Code)
	})

	byCode := make(map[string]int, len(sorted))
	for i, c := range sorted {
		if _, dup := byCode[c.Code]; !dup {
			byCode[c.Code] = i
		}
	}
	return &snapshot{countries: sorted, byCode: byCode, expiresAt: expiresAt}
}

// ParseCodes делит строку по запятым, приводит коды к верхнему регистру,
// убирает повторы с сохранением первого вхождения и отбрасывает не-ISO3.
func ParseCodes(raw string) []string {
	parts := strings.Split(raw, ",")
	seen := make(map[string]struct{}, len(parts))
	codes := make([]string, 0, len(parts))
	for _, p := range parts {
		code := strings.ToUpper(strings.TrimSpace(p))
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		if upperCodePattern.MatchString(code) {
			codes = append(codes, code)
		}
	}
	return codes
}

// Project строит проекцию страны для сравнения.
func Project(c models.Country) models.Comparison {
	currencyCodes := make([]string, 0, len(c.Currencies))
	for code := range c.Currencies {
		currencyCodes = append(currencyCodes, code)
	}
	slices.Sort(currencyCodes)

	var density *float64
	if c.Area != nil && *c.Area != 0 {
		var population float64
		if c.Population != nil {
			population = float64(*c.Population)
		}
		d := population / *c.Area
		density = &d
	}

	return models.Comparison{
		Code:              c.Code,
		Name:              c.Name,
		Region:            c.Region,
		Landlocked:        c.Landlocked,
		Population:        c.Population,
		Area:              c.Area,
		LanguagesCount:    len(c.Languages),
		CurrencyCodes:     currencyCodes,
		PopulationDensity: density,
	}
}
