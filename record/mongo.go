package record

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"xuezhan/config"
	"xuezhan/logx"
)

// MongoManager 牌谱库连接。未配置 mongo 时返回 nil，归档组件对 nil 安全。
type MongoManager struct {
	Cli *mongo.Client
	Db  *mongo.Database
}

func NewMongo(mongoConf config.MongoConf) *MongoManager {
	if mongoConf.Url == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(mongoConf.Url)
	clientOptions.SetMinPoolSize(uint64(mongoConf.MinPoolSize))
	clientOptions.SetMaxPoolSize(uint64(mongoConf.MaxPoolSize))

	if mongoConf.Username != "" && mongoConf.Password != "" {
		clientOptions.SetAuth(options.Credential{
			Username: mongoConf.Username,
			Password: mongoConf.Password,
		})
	}

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		logx.Fatal("mongodb 连接错误: %v", err)
		return nil
	}
	if err = client.Ping(ctx, readpref.Primary()); err != nil {
		logx.Fatal("mongodb Ping 错误: %v", err)
		return nil
	}
	m := &MongoManager{Cli: client}
	m.Db = m.Cli.Database(mongoConf.Db)
	return m
}

func (m *MongoManager) Close() error {
	if m == nil {
		return nil
	}
	return m.Cli.Disconnect(context.TODO())
}

// Records 牌谱集合
func (m *MongoManager) Records() *mongo.Collection {
	if m == nil {
		return nil
	}
	return m.Db.Collection("game_records")
}
