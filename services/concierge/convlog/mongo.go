// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package convlog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore is the durable TurnStore. Turns land in the "conversations"
// collection, profiles in "users", and the analytics methods run as server
// side aggregations so large histories never cross the wire.
type MongoStore struct {
	turns    *mongo.Collection
	profiles *mongo.Collection
	now      func() time.Time
}

// NewMongoStore wraps an already-connected database handle.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		turns:    db.Collection("conversations"),
		profiles: db.Collection("users"),
		now:      time.Now,
	}
}

// AppendTurn implements TurnStore.
func (s *MongoStore) AppendTurn(ctx context.Context, t Turn) error {
	if _, err := s.turns.InsertOne(ctx, t); err != nil {
		return fmt.Errorf("convlog: insert turn: %w", err)
	}
	return nil
}

// UpsertProfile implements TurnStore. $set on dotted preference keys gives
// the same shallow-merge semantics as the in-memory store.
func (s *MongoStore) UpsertProfile(ctx context.Context, sessionID string, preferences map[string]string) error {
	now := s.now()

	set := bson.M{"updated_at": now}
	for k, v := range preferences {
		if v == "" {
			continue
		}
		set["preferences."+k] = v
	}

	_, err := s.profiles.UpdateByID(ctx, sessionID,
		bson.M{
			"$set":         set,
			"$setOnInsert": bson.M{"created_at": now},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("convlog: upsert profile %s: %w", sessionID, err)
	}
	return nil
}

// Profile implements TurnStore.
func (s *MongoStore) Profile(ctx context.Context, sessionID string) (Profile, error) {
	var p Profile
	err := s.profiles.FindOne(ctx, bson.M{"_id": sessionID}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Profile{}, ErrProfileNotFound
	}
	if err != nil {
		return Profile{}, fmt.Errorf("convlog: find profile %s: %w", sessionID, err)
	}
	return p, nil
}

// IntentCounts implements TurnStore.
func (s *MongoStore) IntentCounts(ctx context.Context, since time.Time) ([]IntentCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"timestamp": bson.M{"$gte": since},
			"intent":    bson.M{"$ne": ""},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$intent",
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	}

	cursor, err := s.turns.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("convlog: aggregate intents: %w", err)
	}
	defer cursor.Close(ctx)

	out := []IntentCount{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("convlog: decode intent counts: %w", err)
	}
	return out, nil
}

// ActiveSessionCount implements TurnStore.
func (s *MongoStore) ActiveSessionCount(ctx context.Context, since time.Time) (int64, error) {
	ids, err := s.turns.Distinct(ctx, "session_id", bson.M{"timestamp": bson.M{"$gte": since}})
	if err != nil {
		return 0, fmt.Errorf("convlog: distinct sessions: %w", err)
	}
	return int64(len(ids)), nil
}

// TurnCount implements TurnStore.
func (s *MongoStore) TurnCount(ctx context.Context, since time.Time) (int64, error) {
	n, err := s.turns.CountDocuments(ctx, bson.M{"timestamp": bson.M{"$gte": since}})
	if err != nil {
		return 0, fmt.Errorf("convlog: count turns: %w", err)
	}
	return n, nil
}

// PopularSlotValues implements TurnStore.
func (s *MongoStore) PopularSlotValues(ctx context.Context, slot string, since time.Time, limit int) ([]SlotValueCount, error) {
	if limit <= 0 {
		limit = 10
	}
	field := "entities." + slot
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"timestamp": bson.M{"$gte": since},
			field:       bson.M{"$exists": true, "$ne": ""},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$" + field,
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$limit", Value: limit}},
	}

	cursor, err := s.turns.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("convlog: aggregate slot values: %w", err)
	}
	defer cursor.Close(ctx)

	rows := []struct {
		Value string `bson:"_id"`
		Count int64  `bson:"count"`
	}{}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("convlog: decode slot values: %w", err)
	}

	out := make([]SlotValueCount, 0, len(rows))
	for _, r := range rows {
		out = append(out, SlotValueCount{Value: r.Value, Count: r.Count})
	}
	return out, nil
}
