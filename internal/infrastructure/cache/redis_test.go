package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/ChemReconcile/internal/infrastructure/monitoring/logging"
)

type RedisCacheTestSuite struct {
	suite.Suite
	mock  redismock.ClientMock
	cache Cache
}

func (s *RedisCacheTestSuite) SetupTest() {
	db, mock := redismock.NewClientMock()
	s.mock = mock
	s.cache = NewRedisFromClient(db, logging.NewNopLogger(), WithPrefix("test:"))
}

func (s *RedisCacheTestSuite) TearDownTest() {
	assert.NoError(s.T(), s.mock.ExpectationsWereMet())
}

type cachedLookup struct {
	CID      string `json:"cid"`
	InChIKey string `json:"inchikey"`
	Found    bool   `json:"found"`
}

func (s *RedisCacheTestSuite) TestGetHit() {
	val := cachedLookup{CID: "180", InChIKey: "CSCPPACGZOOCGX-UHFFFAOYSA-N", Found: true}
	raw, _ := json.Marshal(val)

	s.mock.ExpectGet("test:lookup:name:acetone").SetVal(string(raw))

	var dest cachedLookup
	err := s.cache.Get(context.Background(), "lookup:name:acetone", &dest)

	assert.NoError(s.T(), err)
	assert.Equal(s.T(), val, dest)
}

func (s *RedisCacheTestSuite) TestGetMiss() {
	s.mock.ExpectGet("test:lookup:name:unknownium").RedisNil()

	var dest cachedLookup
	err := s.cache.Get(context.Background(), "lookup:name:unknownium", &dest)

	assert.ErrorIs(s.T(), err, ErrCacheMiss)
}

func (s *RedisCacheTestSuite) TestSet() {
	val := cachedLookup{CID: "180", Found: true}
	raw, _ := json.Marshal(val)

	s.mock.ExpectSet("test:lookup:name:acetone", raw, time.Hour).SetVal("OK")

	err := s.cache.Set(context.Background(), "lookup:name:acetone", val, time.Hour)
	assert.NoError(s.T(), err)
}

func (s *RedisCacheTestSuite) TestSetZeroTTLUsesDefault() {
	val := cachedLookup{Found: false}
	raw, _ := json.Marshal(val)

	s.mock.ExpectSet("test:k", raw, 24*time.Hour).SetVal("OK")

	err := s.cache.Set(context.Background(), "k", val, 0)
	assert.NoError(s.T(), err)
}

func (s *RedisCacheTestSuite) TestDelete() {
	s.mock.ExpectDel("test:a", "test:b").SetVal(2)

	err := s.cache.Delete(context.Background(), "a", "b")
	assert.NoError(s.T(), err)
}

func (s *RedisCacheTestSuite) TestDeleteNothing() {
	assert.NoError(s.T(), s.cache.Delete(context.Background()))
}

func (s *RedisCacheTestSuite) TestPing() {
	s.mock.ExpectPing().SetVal("PONG")
	assert.NoError(s.T(), s.cache.Ping(context.Background()))
}

func TestRedisCacheTestSuite(t *testing.T) {
	suite.Run(t, new(RedisCacheTestSuite))
}
