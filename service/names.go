package service

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const systemAuthorName = "System"

// userNames 批量查询用户名称，查不到的用户使用占位名称
func userNames(ctx context.Context, users UserRepository, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	names := make(map[primitive.ObjectID]string, len(ids))
	found, err := users.FindByIDs(ctx, uniqueIDs(ids))
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	for _, u := range found {
		names[u.ID] = u.Name
	}
	for _, id := range ids {
		if _, ok := names[id]; !ok {
			names[id] = "User " + id.Hex()
		}
	}
	return names, nil
}

// contactNames 批量查询联系人名称
func contactNames(ctx context.Context, contacts ContactRepository, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	names := make(map[primitive.ObjectID]string, len(ids))
	found, err := contacts.FindByIDs(ctx, uniqueIDs(ids))
	if err != nil {
		return nil, fmt.Errorf("load contacts: %w", err)
	}
	for _, c := range found {
		names[c.ID] = c.Name
	}
	for _, id := range ids {
		if _, ok := names[id]; !ok {
			names[id] = "Contact " + id.Hex()
		}
	}
	return names, nil
}

func uniqueIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{}, len(ids))
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
