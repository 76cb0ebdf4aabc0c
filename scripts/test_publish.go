//go:build ignore

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/geo-gateway/internal/domain"
)

func main() {
	redisAddr := flag.String("redis", "localhost:6379", "Redis address for streams")
	clientID := flag.String("client", "script-client", "client identity for the record")
	count := flag.Int("count", 3, "number of records to publish")
	flag.Parse()

	client := redis.NewClient(&redis.Options{
		Addr: *redisAddr,
	})
	defer client.Close()

	ctx := context.Background()

	// Проверка подключения
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	for i := 0; i < *count; i++ {
		record := domain.NewHistoryRecord(*clientID, domain.HistoryKindMarker, "", 0, &domain.GeoPoint{
			Lat: 28.6139 + float64(i)*0.001,
			Lon: 77.2090,
		})
		record.Payload, _ = json.Marshal(map[string]interface{}{
			"name":     fmt.Sprintf("Marker %d", i+1),
			"category": "custom",
		})

		data, err := json.Marshal(record)
		if err != nil {
			log.Fatalf("Failed to marshal record: %v", err)
		}

		msgID, err := client.XAdd(ctx, &redis.XAddArgs{
			Stream: domain.StreamHistoryRecord,
			Values: map[string]interface{}{"data": string(data)},
		}).Result()
		if err != nil {
			log.Fatalf("Failed to publish record: %v", err)
		}

		fmt.Printf("Published %s id=%s message=%s\n", record.Kind, record.ID, msgID)
	}

	// Битое сообщение: воркер должен подтвердить и пропустить его
	if _, err := client.XAdd(ctx, &redis.XAddArgs{
		Stream: domain.StreamHistoryRecord,
		Values: map[string]interface{}{"data": "{broken"},
	}).Result(); err != nil {
		log.Fatalf("Failed to publish malformed record: %v", err)
	}

	time.Sleep(100 * time.Millisecond)
	length, _ := client.XLen(ctx, domain.StreamHistoryRecord).Result()
	fmt.Printf("Stream %s length: %d, run `XPENDING %s history-writers` to check delivery\n",
		domain.StreamHistoryRecord, length, domain.StreamHistoryRecord)

}
