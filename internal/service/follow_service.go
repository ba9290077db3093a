package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"go-gin-rbac/internal/core/database"
	"go-gin-rbac/internal/domain"
	"go-gin-rbac/internal/repo"
	"go-gin-rbac/pkg/utils"
)

type FollowService struct {
	users   *repo.UserRepo
	follows *repo.FollowRepo
}

func NewFollowService(users *repo.UserRepo, follows *repo.FollowRepo) *FollowService {
	return &FollowService{users: users, follows: follows}
}

// Follow 已关注时返回 false，不报错
func (s *FollowService) Follow(ctx context.Context, followerID, followingID uint64) (bool, error) {
	if followerID == followingID {
		return false, domain.BadRequest("cannot follow yourself")
	}
	if err := s.requireUsers(ctx, followerID, followingID); err != nil {
		return false, err
	}
	exists, err := s.follows.Exists(ctx, followerID, followingID)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	if err := s.follows.Create(ctx, followerID, followingID); err != nil {
		// 并发重复关注
		if database.IsDuplicateKey(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Unfollow 未关注时返回 false
func (s *FollowService) Unfollow(ctx context.Context, followerID, followingID uint64) (bool, error) {
	n, err := s.follows.Delete(ctx, followerID, followingID)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *FollowService) Followers(ctx context.Context, userID uint64, p utils.Paging) (utils.Page[domain.UserView], error) {
	if err := s.requireUsers(ctx, userID); err != nil {
		return utils.Page[domain.UserView]{}, err
	}
	users, total, err := s.follows.Followers(ctx, userID, p.Offset(), p.Limit)
	if err != nil {
		return utils.Page[domain.UserView]{}, err
	}
	return utils.NewPage(domain.Views(users), total, p), nil
}

func (s *FollowService) Following(ctx context.Context, userID uint64, p utils.Paging) (utils.Page[domain.UserView], error) {
	if err := s.requireUsers(ctx, userID); err != nil {
		return utils.Page[domain.UserView]{}, err
	}
	users, total, err := s.follows.Following(ctx, userID, p.Offset(), p.Limit)
	if err != nil {
		return utils.Page[domain.UserView]{}, err
	}
	return utils.NewPage(domain.Views(users), total, p), nil
}

// Discover 推荐尚未关注的用户
func (s *FollowService) Discover(ctx context.Context, userID uint64, p utils.Paging) (utils.Page[domain.UserView], error) {
	users, total, err := s.follows.Discover(ctx, userID, p.Offset(), p.Limit)
	if err != nil {
		return utils.Page[domain.UserView]{}, err
	}
	return utils.NewPage(domain.Views(users), total, p), nil
}

func (s *FollowService) requireUsers(ctx context.Context, ids ...uint64) error {
	found := make([]bool, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() (err error) {
			found[i], err = s.users.Exists(gctx, id)
			return
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for _, ok := range found {
		if !ok {
			return domain.NotFound("user not found")
		}
	}
	return nil
}
