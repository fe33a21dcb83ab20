package services

import (
	"aed-location-service/internal/adapters/repositories"
	"aed-location-service/internal/domain"
	"aed-location-service/internal/ports"
	"context"
	"errors"
	"testing"
)

var fixtureRows = []domain.LocationInput{
	{Area: "一条通〜十条通", LocationID: 1, Name: "旭川市教育委員会", PostalCode: "070-0036", Address: "北海道旭川市6条通8丁目セントラル旭川ビル6階", PhoneNumber: "0166-25-7534", Floor: "6階教育政策課", Latitude: 43.7703945, Longitude: 142.3631408},
	{Area: "一条通〜十条通", LocationID: 9, Name: "フィール旭川", PostalCode: "070-0031", Address: "北海道旭川市1条通8丁目", PhoneNumber: "0166-25-5443", AvailableTime: "※平日午前8時45分から午後7時30分まで土日祝午前10時から午後7時30分まで", Floor: "7階国際交流スペース内", Latitude: 43.76572279, Longitude: 142.3597048},
	{Area: "一条通〜十条通", LocationID: 34, Name: "旭川市ときわ市民ホール", PostalCode: "078-8215", Address: "北海道旭川市5条通4丁目", PhoneNumber: "0166-23-5577", AvailableTime: "施設休館日を除く， 午前9時〜午後10時", Floor: "1階事務室", Latitude: 43.77216158, Longitude: 142.356329},
	{Area: "末広", LocationID: 187, Name: "旭川市立春光小学校", PostalCode: "071-8131", Address: "北海道旭川市末広1条1丁目", PhoneNumber: "0166-51-5288", Floor: "1階(体育教官室前)廊下", Latitude: 43.80256755, Longitude: 142.3819691},
	{Area: "末広", LocationID: 195, Name: "旭川市立六合中学校", PostalCode: "071-8133", Address: "北海道旭川市末広3条2丁目", PhoneNumber: "0166-51-5388", Floor: "2階職員室", Latitude: 43.80730293, Longitude: 142.3777754},
	{Area: "花咲", LocationID: 357, Name: "旭川市花咲スポーツ公園　球技場", PostalCode: "070-0901", Address: "北海道旭川市花咲町3丁目", PhoneNumber: "0166-51-5288", AvailableTime: "4月20日〜10月20日(延長の可能性あり)専用使用時のみ", Floor: "1階事務室内", Latitude: 43.78868943, Longitude: 142.3701686},
	{Area: "宮前", LocationID: 447, Name: "旭川地方法務局", Address: "旭川市宮前1条3丁目3番15号", Latitude: 43.75798757, Longitude: 142.3723008},
	{Area: "宮前", LocationID: 448, Name: "旭川中税務署(旭川合同庁舎)", Address: "旭川市宮前1条3丁目3番15号 旭川合同庁舎", Latitude: 43.7577086, Longitude: 142.3730304},
	{Area: "宮前", LocationID: 449, Name: "旭川市民活動交流センター　CoCoDe", Address: "旭川市宮前1条3丁目3番30号", Latitude: 43.7566658, Longitude: 142.3717082},
	{Area: "宮前", LocationID: 450, Name: "旭川市科学館　サイパル", Address: "旭川市宮前1条3丁目3番32号", Latitude: 43.7563103, Longitude: 142.3705926},
	{Area: "宮前", LocationID: 451, Name: "旭川市障害者福祉センター「おぴった」", Address: "旭川市宮前1条3丁目3番7号", Latitude: 43.7583754, Longitude: 142.370498},
}

func fixtureLocations(t *testing.T) []domain.InstallationLocation {
	t.Helper()

	factory := domain.NewFactory()
	for _, row := range fixtureRows {
		if _, err := factory.Create(row); err != nil {
			t.Fatalf("fixture location_id=%d: %v", row.LocationID, err)
		}
	}
	return factory.Items()
}

func seededRepo(t *testing.T) *repositories.MemoryLocationRepository {
	t.Helper()

	repo := repositories.NewMemoryLocationRepository()
	for _, loc := range fixtureLocations(t) {
		if err := repo.Upsert(context.Background(), loc); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	return repo
}

// failingRepo rejects upserts of one location id, inside and outside transactions.
type failingRepo struct {
	ports.LocationRepository
	failID int
}

func (f *failingRepo) Upsert(ctx context.Context, loc domain.InstallationLocation) error {
	if loc.LocationID() == f.failID {
		return &domain.DataError{Op: "upsert", Err: errors.New("value too long")}
	}
	return f.LocationRepository.Upsert(ctx, loc)
}

func (f *failingRepo) WithinTx(
	ctx context.Context,
	fn func(ctx context.Context, repo ports.LocationRepository) error,
) error {
	return f.LocationRepository.WithinTx(ctx, func(ctx context.Context, tx ports.LocationRepository) error {
		return fn(ctx, &failingRepo{LocationRepository: tx, failID: f.failID})
	})
}

type stubSource struct {
	rows []domain.LocationInput
	err  error
}

func (s stubSource) Fetch(ctx context.Context) ([]domain.LocationInput, error) {
	return s.rows, s.err
}

type stubAreaCache struct {
	names       []string
	hit         bool
	puts        int
	invalidated int
}

func (c *stubAreaCache) GetAreaNames(ctx context.Context) ([]string, bool, error) {
	return c.names, c.hit, nil
}

func (c *stubAreaCache) PutAreaNames(ctx context.Context, names []string) error {
	c.names = names
	c.hit = true
	c.puts++
	return nil
}

func (c *stubAreaCache) Invalidate(ctx context.Context) error {
	c.names = nil
	c.hit = false
	c.invalidated++
	return nil
}
