package handler

import (
    "fmt"
    "net/http"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/Enochrwa/wardrobe-system-backend/internal/model"
    "github.com/Enochrwa/wardrobe-system-backend/internal/queue"
    "github.com/Enochrwa/wardrobe-system-backend/internal/recommend"
)

func TestOccasions_CreateWithSuggestions(t *testing.T) {
    occ := newFakeOccasions()
    occ.outfits[5] = 7
    svc := &fakeRecommender{}
    pub := &recordingPublisher{}
    h := NewOccasionHandler(occ, svc, pub)

    rec := call(t, h.Create, http.MethodPost, "/v1/occasions",
        `{"name":" Wedding Guest ","date":"2025-08-02","outfit_id":5,"notes":"outdoor ceremony"}`, 7)
    require.Equal(t, http.StatusCreated, rec.Code)

    stored := occ.occasions[1]
    assert.Equal(t, "Wedding Guest", stored.Name)
    require.NotNil(t, stored.Date)
    assert.Equal(t, time.Date(2025, time.August, 2, 0, 0, 0, 0, time.UTC), *stored.Date)
    require.NotNil(t, stored.OutfitID)
    assert.Equal(t, uint64(5), *stored.OutfitID)

    body := decode(t, rec)
    assert.Equal(t, "Wedding Guest", body["name"])
    require.Len(t, body["suggested_outfits"], 1)

    assert.Equal(t, uint64(7), svc.lastUser)
    assert.Equal(t, "Wedding Guest", svc.lastReq.Occasion)
    assert.Equal(t, *stored.Date, svc.lastReq.At)
    assert.Equal(t, 3, svc.lastReq.K)

    require.Len(t, pub.events, 1)
    assert.Equal(t, queue.EventOccasionChanged, pub.events[0].Type)
    assert.Equal(t, uint64(5), *pub.events[0].OutfitID)
}

func TestOccasions_Validation(t *testing.T) {
    occ := newFakeOccasions()
    occ.outfits[5] = 8
    h := NewOccasionHandler(occ, &fakeRecommender{}, queue.Nop{})

    for _, tc := range []struct {
        body string
        want int
    }{
        {`{"notes":"x"}`, http.StatusBadRequest},
        {`{"name":"gala","date":"next friday"}`, http.StatusBadRequest},
        {`{"name":"gala","outfit_id":0}`, http.StatusBadRequest},
        {`{"name":"gala","outfit_id":5}`, http.StatusForbidden},
        {`{"name":"gala","outfit_id":6}`, http.StatusNotFound},
        {`not json`, http.StatusBadRequest},
        {`{"name":"gala","date":"2025-08-02T18:30:00+02:00"}`, http.StatusCreated},
    } {
        rec := call(t, h.Create, http.MethodPost, "/v1/occasions", tc.body, 7)
        assert.Equal(t, tc.want, rec.Code, tc.body)
    }
    require.Len(t, occ.occasions, 1)
    assert.Equal(t, time.Date(2025, time.August, 2, 16, 30, 0, 0, time.UTC), *occ.occasions[1].Date)
}

func TestOccasions_GetSuggestions(t *testing.T) {
    occ := newFakeOccasions()
    occ.occasions[1] = model.Occasion{ID: 1, UserID: 7, Name: "Beach Party"}
    svc := &fakeRecommender{}
    h := NewOccasionHandler(occ, svc, queue.Nop{})

    rec := call(t, h.Get, http.MethodGet, "/v1/occasions/1", "", 7, "id", "1")
    require.Equal(t, http.StatusOK, rec.Code)
    assert.Len(t, decode(t, rec)["suggested_outfits"], 1)
    assert.True(t, svc.lastReq.At.IsZero())

    // nothing suitable is not an error for the occasion itself
    for _, err := range []error{
        fmt.Errorf("%w: no outfits for beach party", recommend.ErrNotFound),
        fmt.Errorf("%w: malformed occasion tag", recommend.ErrValidation),
    } {
        svc.err = err
        rec = call(t, h.Get, http.MethodGet, "/v1/occasions/1", "", 7, "id", "1")
        require.Equal(t, http.StatusOK, rec.Code)
        assert.Equal(t, []any{}, decode(t, rec)["suggested_outfits"])
    }

    svc.err = fmt.Errorf("%w: db down", recommend.ErrStoreUnavailable)
    rec = call(t, h.Get, http.MethodGet, "/v1/occasions/1", "", 7, "id", "1")
    assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

    svc.err = nil
    rec = call(t, h.Get, http.MethodGet, "/v1/occasions/1", "", 8, "id", "1")
    assert.Equal(t, http.StatusNotFound, rec.Code)
    rec = call(t, h.Get, http.MethodGet, "/v1/occasions/x", "", 7, "id", "x")
    assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOccasions_UpdateListDelete(t *testing.T) {
    occ := newFakeOccasions()
    occ.outfits[5], occ.outfits[6] = 7, 8
    one := uint64(5)
    occ.occasions[1] = model.Occasion{ID: 1, UserID: 7, Name: "gala", OutfitID: &one}
    pub := &recordingPublisher{}
    h := NewOccasionHandler(occ, &fakeRecommender{}, pub)

    rec := call(t, h.Update, http.MethodPut, "/v1/occasions/1", `{"name":"gala","outfit_id":6}`, 7, "id", "1")
    assert.Equal(t, http.StatusForbidden, rec.Code)

    rec = call(t, h.Update, http.MethodPut, "/v1/occasions/1", `{"name":"Gala Dinner"}`, 7, "id", "1")
    require.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, "Gala Dinner", occ.occasions[1].Name)
    assert.Nil(t, occ.occasions[1].OutfitID, "omitted outfit_id unassigns")

    rec = call(t, h.Update, http.MethodPut, "/v1/occasions/2", `{"name":"x"}`, 7, "id", "2")
    assert.Equal(t, http.StatusNotFound, rec.Code)

    rec = call(t, h.List, http.MethodGet, "/v1/occasions?skip=2&limit=5", "", 7)
    require.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, 2, occ.offset)
    assert.Equal(t, 5, occ.limit)
    assert.Len(t, decode(t, rec)["occasions"], 1)
    assert.NotContains(t, rec.Body.String(), "suggested_outfits")

    rec = call(t, h.List, http.MethodGet, "/v1/occasions?limit=0", "", 7)
    assert.Equal(t, http.StatusBadRequest, rec.Code)

    rec = call(t, h.Delete, http.MethodDelete, "/v1/occasions/1", "", 8, "id", "1")
    assert.Equal(t, http.StatusNotFound, rec.Code)
    rec = call(t, h.Delete, http.MethodDelete, "/v1/occasions/1", "", 7, "id", "1")
    assert.Equal(t, http.StatusNoContent, rec.Code)
    assert.Empty(t, occ.occasions)

    require.Len(t, pub.events, 2)
    for _, ev := range pub.events {
        assert.Equal(t, queue.EventOccasionChanged, ev.Type)
    }

    rec = call(t, h.Create, http.MethodPost, "/v1/occasions", `{"name":"x"}`, 0)
    assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
