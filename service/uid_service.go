package service

import (
	"context"
	"math/rand"

	"github.com/sony/sonyflake"
)

type sonyflakeUID struct {
	generator *sonyflake.Sonyflake
}

func (s *sonyflakeUID) NewUID(ctx context.Context) (uint64, error) {
	return s.generator.NextID()
}

func NewSonyflakeUID(generator *sonyflake.Sonyflake) *sonyflakeUID {
	return &sonyflakeUID{
		generator: generator,
	}
}

type randUID struct {
}

func (s *randUID) NewUID(ctx context.Context) (uint64, error) {
	return rand.Uint64(), nil
}

func NewRandUID() *randUID {
	return &randUID{}
}
