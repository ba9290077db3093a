package service

import (
	"context"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"go-gin-rbac/internal/core/cache"
	"go-gin-rbac/internal/domain"
	"go-gin-rbac/internal/repo"
)

// 列表缓存按版本分 key：写入只递增版本，晚到的旧数据回写到旧 key 上不会再被读到
const (
	countryVersionKey = "countries:ver"
	countryListPrefix = "countries:all:"
	countryListTTL    = 10 * time.Minute
)

var iso2Re = regexp.MustCompile(`^[A-Z]{2}$`)

type CountryInput struct {
	ISO2 string
	Name string
}

type CountryPatch struct {
	ISO2 *string
	Name *string
}

// CountryService 国家列表读多写少，整表缓存在 redis，写入时失效
type CountryService struct {
	countries *repo.CountryRepo
	cache     *cache.Cache // 可为 nil
	log       *zap.Logger
}

func NewCountryService(countries *repo.CountryRepo, c *cache.Cache, l *zap.Logger) *CountryService {
	return &CountryService{countries: countries, cache: c, log: l}
}

func normISO2(s string) (string, error) {
	v := strings.ToUpper(strings.TrimSpace(s))
	if !iso2Re.MatchString(v) {
		return "", domain.BadRequest("iso2 must be two letters")
	}
	return v, nil
}

func normCountryName(s string) (string, error) {
	v := strings.TrimSpace(s)
	if n := len([]rune(v)); n < 1 || n > 100 {
		return "", domain.BadRequest("name must be 1..100 characters")
	}
	return v, nil
}

func (s *CountryService) Create(ctx context.Context, in CountryInput) (*domain.Country, error) {
	iso2, err := normISO2(in.ISO2)
	if err != nil {
		return nil, err
	}
	name, err := normCountryName(in.Name)
	if err != nil {
		return nil, err
	}
	if err := s.checkUnique(ctx, &iso2, &name, 0); err != nil {
		return nil, err
	}
	m := &domain.Country{ISO2: iso2, Name: name}
	if err := s.countries.Create(ctx, m); err != nil {
		return nil, writeErr(err, "country already exists")
	}
	s.invalidate(ctx)
	return m, nil
}

func (s *CountryService) List(ctx context.Context) ([]domain.Country, error) {
	if s.cache == nil {
		return s.countries.List(ctx)
	}
	ver, ok, err := s.cache.GetString(ctx, countryVersionKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		ver = "0"
	}
	out, err := cache.GetOrLoadJSON(s.cache, ctx, countryListPrefix+ver, countryListTTL,
		func(ctx context.Context) (*[]domain.Country, error) {
			list, err := s.countries.List(ctx)
			if err != nil {
				return nil, err
			}
			return &list, nil
		})
	if err != nil {
		return nil, err
	}
	if out == nil {
		return []domain.Country{}, nil
	}
	return *out, nil
}

func (s *CountryService) Get(ctx context.Context, id uint64) (*domain.Country, error) {
	m, err := s.countries.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.NotFound("country not found")
	}
	return m, nil
}

// FindOne 没有匹配时返回 (nil, nil)
func (s *CountryService) FindOne(ctx context.Context, f domain.CountryFilter) (*domain.Country, error) {
	f.ISO2 = strings.ToUpper(strings.TrimSpace(f.ISO2))
	f.Name = strings.TrimSpace(f.Name)
	if f.Empty() {
		return nil, domain.BadRequest("at least one filter is required")
	}
	return s.countries.FindOne(ctx, f)
}

func (s *CountryService) Update(ctx context.Context, id uint64, in CountryPatch) (*domain.Country, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	fields := map[string]any{}
	var iso2, name *string
	if in.ISO2 != nil {
		v, err := normISO2(*in.ISO2)
		if err != nil {
			return nil, err
		}
		iso2 = &v
		fields["iso2"] = v
	}
	if in.Name != nil {
		v, err := normCountryName(*in.Name)
		if err != nil {
			return nil, err
		}
		name = &v
		fields["name"] = v
	}
	if err := s.checkUnique(ctx, iso2, name, id); err != nil {
		return nil, err
	}
	if err := s.countries.Updates(ctx, id, fields); err != nil {
		return nil, writeErr(err, "country already exists")
	}
	s.invalidate(ctx)
	return s.Get(ctx, id)
}

func (s *CountryService) Delete(ctx context.Context, id uint64) error {
	n, err := s.countries.Delete(ctx, id)
	if err != nil {
		return deleteErr(err)
	}
	if n == 0 {
		return domain.NotFound("country not found")
	}
	s.invalidate(ctx)
	return nil
}

func (s *CountryService) checkUnique(ctx context.Context, iso2, name *string, exceptID uint64) error {
	if iso2 != nil {
		taken, err := s.countries.ISO2Taken(ctx, *iso2, exceptID)
		if err != nil {
			return err
		}
		if taken {
			return domain.Conflict("iso2 already exists")
		}
	}
	if name != nil {
		taken, err := s.countries.NameTaken(ctx, *name, exceptID)
		if err != nil {
			return err
		}
		if taken {
			return domain.Conflict("country name already exists")
		}
	}
	return nil
}

// invalidate 失败只记日志，缓存最多旧 TTL
func (s *CountryService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if _, err := s.cache.Incr(ctx, countryVersionKey); err != nil {
		s.log.Warn("invalidate country cache failed", zap.Error(err))
	}
}
