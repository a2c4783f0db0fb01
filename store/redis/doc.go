// Package redis provides a store.RunStore backed by Redis through
// github.com/redis/go-redis/v9.
//
// Each record is a JSON string under "<prefix>run:<id>"; a sorted set
// "<prefix>runs" indexes the records by start time. A TTL makes records
// expire, and List skips index entries whose record has expired.
//
//	runs := redis.NewRedisRunStore(redis.RedisOptions{
//		Addr: "localhost:6379",
//		TTL:  24 * time.Hour,
//	})
package redis
