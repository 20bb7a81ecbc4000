package handler

import (
    "context"
    "sync"
    "time"

    "github.com/Enochrwa/wardrobe-system-backend/internal/model"
    "github.com/Enochrwa/wardrobe-system-backend/internal/queue"
    "github.com/Enochrwa/wardrobe-system-backend/internal/recommend"
    "github.com/Enochrwa/wardrobe-system-backend/internal/repository"
    "github.com/Enochrwa/wardrobe-system-backend/internal/utils"
)

type fakeRecommender struct {
    err      error
    lastReq  recommend.Request
    lastUser uint64
    limit    int
}

func (f *fakeRecommender) RecommendOutfitForOccasion(_ context.Context, uid uint64, req recommend.Request) ([]recommend.OutfitRecommendation, error) {
    f.lastUser, f.lastReq = uid, req
    if f.err != nil {
        return nil, f.err
    }
    return []recommend.OutfitRecommendation{{Outfit: model.Outfit{ID: 10}, Score: 0.9, Reason: "fits"}}, nil
}

func (f *fakeRecommender) RecommendItemsForOccasion(_ context.Context, uid uint64, req recommend.Request) ([]recommend.ItemRecommendation, error) {
    f.lastUser, f.lastReq = uid, req
    if f.err != nil {
        return nil, f.err
    }
    return []recommend.ItemRecommendation{{Item: model.Item{ID: 1}, Score: 0.8}}, nil
}

func (f *fakeRecommender) SuggestWardrobeAdditions(_ context.Context, uid uint64, limit int) ([]recommend.CategorySuggestion, error) {
    f.lastUser, f.limit = uid, limit
    if f.err != nil {
        return nil, f.err
    }
    return []recommend.CategorySuggestion{{Category: "footwear", Owned: 0, Reason: "none owned"}}, nil
}

func (f *fakeRecommender) Statistics(_ context.Context, uid uint64) (recommend.WardrobeStats, error) {
    f.lastUser = uid
    if f.err != nil {
        return recommend.WardrobeStats{}, f.err
    }
    return recommend.WardrobeStats{TotalItems: 4}, nil
}

func (f *fakeRecommender) DefaultK() int { return 3 }

type recordingPublisher struct {
    mu     sync.Mutex
    events []queue.Event
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.Event) error {
    p.mu.Lock()
    defer p.mu.Unlock()
    p.events = append(p.events, ev)
    return nil
}

type fakeItems struct {
    items  map[uint64]model.Item
    filter repository.ItemFilter
    nextID uint64
}

func newFakeItems() *fakeItems { return &fakeItems{items: map[uint64]model.Item{}, nextID: 1} }

func (f *fakeItems) Create(_ context.Context, it *model.Item) error {
    it.ID = f.nextID
    f.nextID++
    it.CreatedAt = time.Now()
    f.items[it.ID] = *it
    return nil
}

func (f *fakeItems) Get(_ context.Context, uid, id uint64) (model.Item, error) {
    it, ok := f.items[id]
    if !ok || it.UserID != uid {
        return model.Item{}, repository.ErrNotFound
    }
    return it, nil
}

func (f *fakeItems) List(_ context.Context, uid uint64, flt repository.ItemFilter) ([]model.Item, error) {
    f.filter = flt
    out := []model.Item{}
    for _, it := range f.items {
        if it.UserID == uid {
            out = append(out, it)
        }
    }
    return out, nil
}

func (f *fakeItems) Update(ctx context.Context, it *model.Item) error {
    if _, err := f.Get(ctx, it.UserID, it.ID); err != nil {
        return err
    }
    f.items[it.ID] = *it
    return nil
}

func (f *fakeItems) Delete(ctx context.Context, uid, id uint64) error {
    if _, err := f.Get(ctx, uid, id); err != nil {
        return err
    }
    delete(f.items, id)
    return nil
}

type fakeOutfits struct{ err error }

func (f *fakeOutfits) Create(_ context.Context, o *model.Outfit) error {
    if f.err != nil {
        return f.err
    }
    o.ID = 99
    return nil
}
func (f *fakeOutfits) Get(context.Context, uint64, uint64) (model.Outfit, error) {
    return model.Outfit{}, repository.ErrNotFound
}
func (f *fakeOutfits) ListByUser(context.Context, uint64) ([]model.Outfit, error) { return nil, nil }
func (f *fakeOutfits) Update(context.Context, *model.Outfit) error                 { return f.err }
func (f *fakeOutfits) Delete(context.Context, uint64, uint64) error                { return f.err }

type fakePlans struct {
    start time.Time
    days  map[time.Weekday]uint64
    from  time.Time
    to    time.Time
}

func (f *fakePlans) Upsert(_ context.Context, p *model.PlanEntry) error { p.ID = 1; return nil }
func (f *fakePlans) ListRange(_ context.Context, _ uint64, from, to time.Time) ([]model.PlanEntry, error) {
    f.from, f.to = from, to
    return []model.PlanEntry{}, nil
}
func (f *fakePlans) Delete(context.Context, uint64, time.Time) error { return repository.ErrNotFound }
func (f *fakePlans) SetWeek(_ context.Context, _ uint64, start time.Time, _ string, days map[time.Weekday]uint64) ([]model.PlanEntry, error) {
    f.start, f.days = start, days
    return []model.PlanEntry{}, nil
}

type fakeHistory struct{ recorded []model.StyleHistoryRecord }

func (f *fakeHistory) Record(_ context.Context, h *model.StyleHistoryRecord) error {
    h.ID = uint64(len(f.recorded) + 1)
    f.recorded = append(f.recorded, *h)
    return nil
}
func (f *fakeHistory) Get(context.Context, uint64, uint64) (model.StyleHistoryRecord, error) {
    return model.StyleHistoryRecord{}, repository.ErrNotFound
}
func (f *fakeHistory) List(context.Context, uint64, int, int) ([]model.StyleHistoryRecord, error) {
    return f.recorded, nil
}

type fakeProfiles struct{ saved *model.Profile }

func (f *fakeProfiles) Get(_ context.Context, uid uint64) (model.Profile, error) {
    return model.Profile{UserID: uid, PreferredStyles: []string{}, PreferredColors: []string{}, AvoidedColors: []string{}}, nil
}
func (f *fakeProfiles) Upsert(_ context.Context, p *model.Profile) error { f.saved = p; return nil }

type fakeUsers struct {
    byLogin map[string]model.User
    created []string
}

func (f *fakeUsers) Create(_ context.Context, username, email, password string, cost int) (uint64, error) {
    hash, err := utils.HashPassword(password, cost)
    if err != nil {
        return 0, err
    }
    if _, ok := f.byLogin[email]; ok {
        return 0, repository.ErrEmailExists
    }
    id := uint64(len(f.created) + 100)
    u := model.User{ID: id, Username: username, Email: email, PasswordHash: hash}
    f.byLogin[email], f.byLogin[username] = u, u
    f.created = append(f.created, username)
    return id, nil
}

func (f *fakeUsers) GetByLogin(_ context.Context, login string) (model.User, error) {
    u, ok := f.byLogin[login]
    if !ok {
        return model.User{}, repository.ErrNotFound
    }
    return u, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
    for _, u := range f.byLogin {
        if u.ID == id {
            return u, nil
        }
    }
    return model.User{}, repository.ErrNotFound
}

type fakeTokens struct {
    live    map[string]uint64
    revoked []string
    all     []uint64
}

func (f *fakeTokens) StoreRefresh(_ context.Context, uid uint64, hash string, _ time.Time) error {
    f.live[hash] = uid
    return nil
}

func (f *fakeTokens) ValidateRefresh(_ context.Context, hash string) (uint64, error) {
    uid, ok := f.live[hash]
    if !ok {
        return 0, repository.ErrNotFound
    }
    return uid, nil
}

func (f *fakeTokens) Rotate(_ context.Context, uid uint64, oldHash, newHash string, _ time.Time) error {
    if _, ok := f.live[oldHash]; !ok {
        return repository.ErrNotFound
    }
    delete(f.live, oldHash)
    f.live[newHash] = uid
    return nil
}

func (f *fakeTokens) RevokeByHash(_ context.Context, hash string) error {
    delete(f.live, hash)
    f.revoked = append(f.revoked, hash)
    return nil
}

func (f *fakeTokens) RevokeAllForUser(_ context.Context, uid uint64) error {
    f.all = append(f.all, uid)
    return nil
}

type fakeOccasions struct {
    occasions map[uint64]model.Occasion
    outfits   map[uint64]uint64 // outfit id -> owner
    nextID    uint64
    offset    int
    limit     int
}

func newFakeOccasions() *fakeOccasions {
    return &fakeOccasions{occasions: map[uint64]model.Occasion{}, outfits: map[uint64]uint64{}, nextID: 1}
}

func (f *fakeOccasions) checkOutfit(o *model.Occasion) error {
    if o.OutfitID == nil {
        return nil
    }
    owner, ok := f.outfits[*o.OutfitID]
    if !ok {
        return repository.ErrNotFound
    }
    if owner != o.UserID {
        return repository.ErrForbidden
    }
    return nil
}

func (f *fakeOccasions) Create(_ context.Context, o *model.Occasion) error {
    if err := f.checkOutfit(o); err != nil {
        return err
    }
    o.ID = f.nextID
    f.nextID++
    f.occasions[o.ID] = *o
    return nil
}

func (f *fakeOccasions) Get(_ context.Context, uid, id uint64) (model.Occasion, error) {
    o, ok := f.occasions[id]
    if !ok || o.UserID != uid {
        return model.Occasion{}, repository.ErrNotFound
    }
    return o, nil
}

func (f *fakeOccasions) List(_ context.Context, uid uint64, offset, limit int) ([]model.Occasion, error) {
    f.offset, f.limit = offset, limit
    out := []model.Occasion{}
    for _, o := range f.occasions {
        if o.UserID == uid {
            out = append(out, o)
        }
    }
    return out, nil
}

func (f *fakeOccasions) Update(ctx context.Context, o *model.Occasion) error {
    if _, err := f.Get(ctx, o.UserID, o.ID); err != nil {
        return err
    }
    if err := f.checkOutfit(o); err != nil {
        return err
    }
    f.occasions[o.ID] = *o
    return nil
}

func (f *fakeOccasions) Delete(ctx context.Context, uid, id uint64) error {
    if _, err := f.Get(ctx, uid, id); err != nil {
        return err
    }
    delete(f.occasions, id)
    return nil
}
