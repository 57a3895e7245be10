package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/confspotter/confspotter-be/internal/models"
)

// RecommendationServiceProvider defines the interface for interest-based suggestions.
type RecommendationServiceProvider interface {
	Recommend(ctx context.Context, userID int64) ([]models.Recommendation, error)
	UpcomingDeadlines(ctx context.Context, userID int64, now time.Time, days int) ([]models.Recommendation, error)
}

// RecommendationService matches conferences against user interests.
type RecommendationService struct {
	users       UserServiceProvider
	conferences ConferenceServiceProvider
}

// NewRecommendationService creates a new RecommendationService.
func NewRecommendationService(users UserServiceProvider, conferences ConferenceServiceProvider) *RecommendationService {
	return &RecommendationService{users: users, conferences: conferences}
}

// Recommend returns every conference whose name or description mentions at
// least one of the user's interests. A user without interests gets an empty list.
func (s *RecommendationService) Recommend(ctx context.Context, userID int64) ([]models.Recommendation, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	interests := user.Interests()
	if len(interests) == 0 {
		return []models.Recommendation{}, nil
	}

	conferences, err := s.conferences.ListConferences(ctx, "")
	if err != nil {
		return nil, err
	}
	return MatchConferences(interests, conferences), nil
}

// UpcomingDeadlines returns the user's matching conferences whose paper
// deadline falls between today and today+days inclusive, soonest first.
func (s *RecommendationService) UpcomingDeadlines(ctx context.Context, userID int64, now time.Time, days int) ([]models.Recommendation, error) {
	matches, err := s.Recommend(ctx, userID)
	if err != nil {
		return nil, err
	}
	return FilterDeadlines(matches, now, days), nil
}

// MatchConferences pairs each conference with the interests found in its
// name or description, ignoring case. Unmatched conferences are dropped.
func MatchConferences(interests []string, conferences []models.Conference) []models.Recommendation {
	out := []models.Recommendation{}
	for _, c := range conferences {
		name := strings.ToLower(c.Name)
		desc := strings.ToLower(c.Description)

		var matched []string
		for _, interest := range interests {
			needle := strings.ToLower(strings.TrimSpace(interest))
			if needle == "" {
				continue
			}
			if strings.Contains(name, needle) || strings.Contains(desc, needle) {
				matched = append(matched, interest)
			}
		}
		if len(matched) > 0 {
			out = append(out, models.Recommendation{Conference: c, MatchedInterests: matched})
		}
	}
	return out
}

// FilterDeadlines keeps recommendations with a paper deadline on a calendar
// day in [today, today+days], compared in UTC, sorted by deadline ascending.
func FilterDeadlines(recs []models.Recommendation, now time.Time, days int) []models.Recommendation {
	today := startOfDay(now.UTC())
	cutoff := today.AddDate(0, 0, days)

	out := []models.Recommendation{}
	for _, r := range recs {
		if r.PaperDeadline == nil {
			continue
		}
		day := startOfDay(r.PaperDeadline.UTC())
		if day.Before(today) || day.After(cutoff) {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PaperDeadline.Before(*out[j].PaperDeadline)
	})
	return out
}
