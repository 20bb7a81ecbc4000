package main

import (
    "errors"

    "github.com/spf13/cobra"

    "github.com/Enochrwa/wardrobe-system-backend/internal/config"
    "github.com/Enochrwa/wardrobe-system-backend/internal/recommend"
)

type recommendOpts struct {
    user     uint64
    occasion string
    season   string
    weather  string
    k        int
    items    bool
}

func newRecommendCmd() *cobra.Command {
    var o recommendOpts
    cmd := &cobra.Command{
        Use:   "recommend",
        Short: "Rank a user's outfits (or items) for an occasion",
        Long: `Rank a user's outfits for an occasion and print them as JSON.

With --items single items are ranked instead.  --season or --weather
override the season derived from today's date.`,
        Args: cobra.NoArgs,
        RunE: func(cmd *cobra.Command, _ []string) error {
            if o.user == 0 {
                return errors.New("--user is required")
            }
            if o.occasion == "" {
                return errors.New("--occasion is required")
            }
            cfg, err := config.Load()
            if err != nil {
                return err
            }
            db, err := openDB(cmd, cfg)
            if err != nil {
                return err
            }
            defer db.Close()
            svc, err := newService(cfg, db)
            if err != nil {
                return err
            }

            req := recommend.Request{Occasion: o.occasion, Season: o.season, Weather: o.weather, K: svc.DefaultK()}
            if cmd.Flags().Changed("k") {
                req.K = o.k
            }
            if o.items {
                recs, err := svc.RecommendItemsForOccasion(cmd.Context(), o.user, req)
                if err != nil {
                    return err
                }
                return printJSON(cmd.OutOrStdout(), recs)
            }
            recs, err := svc.RecommendOutfitForOccasion(cmd.Context(), o.user, req)
            if err != nil {
                return err
            }
            return printJSON(cmd.OutOrStdout(), recs)
        },
    }
    f := cmd.Flags()
    f.Uint64Var(&o.user, "user", 0, "user id")
    f.StringVar(&o.occasion, "occasion", "", "occasion tag, e.g. formal or casual")
    f.StringVar(&o.season, "season", "", "spring, summer, autumn or winter")
    f.StringVar(&o.weather, "weather", "", "weather word, e.g. cold or rainy")
    f.IntVar(&o.k, "k", 0, "number of results (default from RECOMMEND_TOP_K)")
    f.BoolVar(&o.items, "items", false, "rank single items instead of outfits")
    return cmd
}

func newSuggestCmd() *cobra.Command {
    var (
        user  uint64
        limit int
    )
    cmd := &cobra.Command{
        Use:   "suggest",
        Short: "List categories a user's wardrobe is short of",
        Args:  cobra.NoArgs,
        RunE: func(cmd *cobra.Command, _ []string) error {
            if user == 0 {
                return errors.New("--user is required")
            }
            if limit < 0 {
                return errors.New("--limit must not be negative")
            }
            cfg, err := config.Load()
            if err != nil {
                return err
            }
            db, err := openDB(cmd, cfg)
            if err != nil {
                return err
            }
            defer db.Close()
            svc, err := newService(cfg, db)
            if err != nil {
                return err
            }
            sugg, err := svc.SuggestWardrobeAdditions(cmd.Context(), user, limit)
            if err != nil {
                return err
            }
            return printJSON(cmd.OutOrStdout(), sugg)
        },
    }
    cmd.Flags().Uint64Var(&user, "user", 0, "user id")
    cmd.Flags().IntVar(&limit, "limit", 0, "maximum suggestions, 0 for all")
    return cmd
}
