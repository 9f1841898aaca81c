package dao

import (
	"context"
	"fmt"
	"time"

	"github.com/ayxworxfr/gsms/internal/config"
	"github.com/ayxworxfr/gsms/internal/domain/models"
	"github.com/ayxworxfr/gsms/pkg/logger"
	_ "github.com/go-sql-driver/mysql"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"xorm.io/xorm"
	"xorm.io/xorm/log"
)

// NewEngine 按配置创建 mysql 引擎并挂载 SQL 日志钩子
func NewEngine(cfg config.DatabaseConfig, logLevel string) (*xorm.Engine, error) {
	engine, err := xorm.NewEngine("mysql", cfg.DSN())
	if err != nil {
		return nil, errors.Wrap(err, "create xorm engine")
	}

	// 设置数据库连接池
	engine.SetMaxIdleConns(cfg.MaxIdleConns)
	engine.SetMaxOpenConns(cfg.MaxOpenConns)
	engine.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)
	Configure(engine, cfg.ShowSQL, logLevel)

	if cfg.SyncSchema {
		if err := SyncDB(context.Background(), engine, false); err != nil {
			_ = engine.Close()
			return nil, err
		}
	}
	return engine, nil
}

// Configure 挂载日志钩子并设置 xorm 自身日志级别
func Configure(engine *xorm.Engine, showSQL bool, logLevel string) {
	engine.AddHook(NewXormLogger(showSQL))
	switch logLevel {
	case "debug":
		engine.Logger().SetLevel(log.LOG_DEBUG)
	case "warn":
		engine.Logger().SetLevel(log.LOG_WARNING)
	case "error":
		engine.Logger().SetLevel(log.LOG_ERR)
	default:
		engine.Logger().SetLevel(log.LOG_INFO)
	}
}

// SyncDB 同步全部表结构，dropTables 为真时先按逆序删表（仅用于初始化测试库）
func SyncDB(ctx context.Context, engine *xorm.Engine, dropTables bool) error {
	var result *multierror.Error
	tables := models.AllTables()

	if dropTables {
		for i := len(tables) - 1; i >= 0; i-- {
			tableName := engine.TableName(tables[i])
			logger.Info(ctx, "drop table", zap.String("table", tableName))
			if _, err := engine.Exec(fmt.Sprintf("DROP TABLE IF EXISTS `%s`", tableName)); err != nil {
				result = multierror.Append(result, errors.Wrapf(err, "drop table %s", tableName))
			}
		}
	}

	for _, model := range tables {
		tableName := engine.TableName(model)
		if err := engine.Sync2(model); err != nil {
			result = multierror.Append(result, errors.Wrapf(err, "sync table %s", tableName))
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		logger.Error(ctx, "sync database finished with errors", zap.Error(err))
		return err
	}
	logger.Info(ctx, "sync database succeeded", zap.Int("tables", len(tables)))
	return nil
}
