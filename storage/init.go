package storage

import (
	"SevenDay/storage/database"
	"SevenDay/storage/mq"
	"SevenDay/storage/redis"
)

// Init 统一初始化存储层
func Init() error {
	if err := database.Init(); err != nil {
		return err
	}

	if err := redis.Init(); err != nil {
		return err
	}

	return mq.Init()
}
