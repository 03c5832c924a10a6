// Package seed fills a store with demo users, listings and the records that
// hang off them. It is meant for local development and tests.
package seed

import (
	"context"
	"fmt"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/enosefelix/job-finder-sub000/internal/domain"
	"github.com/enosefelix/job-finder-sub000/internal/repository"
)

// Options sizes a seed run. A zero Seed draws a random one.
type Options struct {
	Users                  int
	ListingsPerUser        int
	ApplicationsPerListing int
	Seed                   int64
}

// Summary lists what a run created.
type Summary struct {
	Admin        domain.User
	Users        []domain.User
	Listings     []domain.JobListing
	Applications int
	Tags         int
	Bookmarks    int
	BlobKeys     []string
}

// Factory builds entities with fake but plausible content.
type Factory struct {
	store repository.Store
	faker *gofakeit.Faker
	opts  Options
}

// NewFactory returns a factory writing to store.
func NewFactory(store repository.Store, opts Options) *Factory {
	opts.Users = max(opts.Users, 1)
	opts.ListingsPerUser = max(opts.ListingsPerUser, 0)
	opts.ApplicationsPerListing = max(opts.ApplicationsPerListing, 0)
	return &Factory{store: store, faker: gofakeit.New(opts.Seed), opts: opts}
}

// Run creates one admin plus the configured members and their listings in a
// single transaction.
func (f *Factory) Run(ctx context.Context) (*Summary, error) {
	var summary Summary
	err := f.store.WithinTx(ctx, func(repos repository.Repositories) error {
		summary = Summary{}

		admin := f.user(domain.UserRoleAdmin)
		if err := repos.Users.Create(ctx, &admin); err != nil {
			return fmt.Errorf("create admin: %w", err)
		}
		summary.Admin = admin

		for range f.opts.Users {
			user := f.user(domain.UserRoleUser)
			if err := repos.Users.Create(ctx, &user); err != nil {
				return fmt.Errorf("create user: %w", err)
			}
			summary.Users = append(summary.Users, user)
		}

		for _, poster := range summary.Users {
			for range f.opts.ListingsPerUser {
				listing := f.listing(poster, admin)
				if err := repos.Listings.Create(ctx, &listing); err != nil {
					return fmt.Errorf("create listing: %w", err)
				}
				summary.Listings = append(summary.Listings, listing)
				if err := f.children(ctx, repos, listing, summary.Users, &summary); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func (f *Factory) user(role domain.UserRole) domain.User {
	return domain.User{
		Email:    f.faker.Email(),
		Role:     role,
		Status:   domain.UserStatusActive,
		Verified: true,
	}
}

func (f *Factory) listing(poster, admin domain.User) domain.JobListing {
	listing := domain.JobListing{
		Title:     fmt.Sprintf("%s at %s", f.faker.JobTitle(), f.faker.Company()),
		Status:    domain.ListingStatuses[f.faker.Number(0, len(domain.ListingStatuses)-1)],
		CreatedBy: poster.ID,
	}
	if listing.Status == domain.ListingStatusApproved {
		listing.ApprovedBy = &admin.ID
		listing.UpdatedBy = &admin.ID
	}
	return listing
}

// children adds applications from other members, plus a tag and a bookmark
// per applicant.
func (f *Factory) children(ctx context.Context, repos repository.Repositories, listing domain.JobListing, users []domain.User, summary *Summary) error {
	applicants := make([]domain.User, 0, len(users))
	for _, u := range users {
		if u.ID != listing.CreatedBy {
			applicants = append(applicants, u)
		}
	}
	f.faker.ShuffleAnySlice(applicants)

	for _, applicant := range applicants[:min(f.opts.ApplicationsPerListing, len(applicants))] {
		resume := fmt.Sprintf("resumes/%s.pdf", f.faker.UUID())
		app := domain.JobListingApplication{
			JobListingID: listing.ID,
			UserID:       applicant.ID,
			Resume:       &resume,
			Availability: f.faker.RandomString([]string{"immediately", "two weeks", "one month"}),
		}
		summary.BlobKeys = append(summary.BlobKeys, resume)
		if f.faker.Bool() {
			letter := fmt.Sprintf("cover-letters/%s.pdf", f.faker.UUID())
			app.CoverLetter = &letter
			summary.BlobKeys = append(summary.BlobKeys, letter)
		}
		if err := repos.Applications.Create(ctx, &app); err != nil {
			return fmt.Errorf("create application: %w", err)
		}
		summary.Applications++

		tag := domain.Tag{JobListingID: listing.ID, TaggedUserID: applicant.ID, TaggedByUserID: listing.CreatedBy}
		if err := repos.Tags.Create(ctx, &tag); err != nil {
			return fmt.Errorf("create tag: %w", err)
		}
		summary.Tags++

		bookmark := domain.Bookmark{JobListingID: listing.ID, UserID: applicant.ID}
		if err := repos.Bookmarks.Create(ctx, &bookmark); err != nil {
			return fmt.Errorf("create bookmark: %w", err)
		}
		summary.Bookmarks++
	}
	return nil
}
