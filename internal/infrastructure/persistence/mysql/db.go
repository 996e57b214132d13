package mysql

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/bigbooks/internal/infrastructure/config"
)

// NewDB 创建数据库连接
// 设计说明：
// 1. 使用GORM v2作为ORM框架
// 2. 配置连接池参数（MaxOpenConns、MaxIdleConns、ConnMaxLifetime）
// 3. 开发环境开启SQL日志，生产环境关闭
// 4. 自动迁移表结构（AutoMigrate）
func NewDB(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	dsn := cfg.Database.DSN()

	logLevel := logger.Silent
	if cfg.Server.Mode == "debug" {
		logLevel = logger.Info // 开发环境打印SQL
	}

	db, err := gorm.Open(mysql.Open(dsn), gormConfig(logLevel))
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	// 配置连接池
	// 学习要点：合理的连接池配置对性能至关重要
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}

	log.Info("数据库连接成功", zap.String("host", cfg.Database.Host), zap.String("db", cfg.Database.DBName))

	// 注意：生产环境应使用专门的迁移工具（如golang-migrate）
	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	return db, nil
}

// gormConfig 公共GORM配置
// 1. SkipDefaultTransaction：单条写操作不再包一层事务，资金操作由TxManager显式开启事务
// 2. TranslateError：唯一索引冲突转换为gorm.ErrDuplicatedKey
func gormConfig(level logger.LogLevel) *gorm.Config {
	return &gorm.Config{
		Logger:                 logger.Default.LogMode(level),
		SkipDefaultTransaction: true,
		TranslateError:         true,
		NowFunc: func() time.Time {
			return time.Now()
		},
	}
}

// AutoMigrate 自动迁移表结构
// 学习要点：
// 1. AutoMigrate只会创建表、添加字段，不会删除或修改现有字段
// 2. 生产环境应使用版本化的迁移脚本，不要依赖AutoMigrate
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&AccountModel{},
		&BookModel{},
		&LedgerEntryModel{},
		&ReviewModel{},
	)
}

// AccountModel GORM账户模型
// 设计说明：
// 1. 这是infrastructure层的数据模型，包含GORM tag
// 2. 金额统一使用decimal(12,2)，与领域层的decimal.Decimal一一对应
// 3. 账户不删除只停用，所以没有DeletedAt
type AccountModel struct {
	ID          uint            `gorm:"primaryKey"`
	Email       string          `gorm:"uniqueIndex;size:100;not null;comment:邮箱(小写)"`
	Name        string          `gorm:"size:100;not null;comment:姓名"`
	Role        string          `gorm:"size:20;not null;comment:角色(Admin/Customer)"`
	Password    string          `gorm:"size:255;not null;comment:密码（bcrypt加密）"`
	Active      bool            `gorm:"index;not null;default:true;comment:是否启用"`
	Wallet      decimal.Decimal `gorm:"type:decimal(12,2);not null;comment:钱包余额"`
	SeedBalance decimal.Decimal `gorm:"type:decimal(12,2);not null;comment:开户初始余额"`
	CreatedAt   time.Time       `gorm:"comment:创建时间"`
	UpdatedAt   time.Time       `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (AccountModel) TableName() string {
	return "accounts"
}

// BookModel GORM图书模型
// 设计说明:
// 1. ISBN有唯一索引,防止重复
// 2. Genre、Author有普通索引,支持按分类/作者浏览
type BookModel struct {
	ID          uint            `gorm:"primaryKey"`
	ISBN        string          `gorm:"uniqueIndex;size:36;not null;comment:ISBN(GUID)"`
	Title       string          `gorm:"size:200;not null;comment:书名"`
	Author      string          `gorm:"index;size:100;not null;comment:作者"`
	Description string          `gorm:"type:text;comment:图书描述"`
	Genre       int             `gorm:"index;not null;comment:分类"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null;comment:单价"`
	Stock       int             `gorm:"not null;default:0;comment:库存数量"`
	CreatedAt   time.Time       `gorm:"comment:创建时间"`
	UpdatedAt   time.Time       `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (BookModel) TableName() string {
	return "books"
}

// LedgerEntryModel GORM账本流水模型
// 教学要点:
// 1. 只插入不更新,金额负数为购买、正数为充值
// 2. Confirmation唯一索引是幂等去重的最后一道防线
// 3. (account_id, created_at)索引支持对账单查询
type LedgerEntryModel struct {
	ID           uint            `gorm:"primaryKey"`
	AccountID    uint            `gorm:"index:idx_account_time;not null;comment:账户ID"`
	Amount       decimal.Decimal `gorm:"type:decimal(12,2);not null;comment:金额(负数为购买)"`
	Confirmation string          `gorm:"uniqueIndex;size:36;not null;comment:确认号"`
	BookID       *uint           `gorm:"index;comment:图书ID(充值为空)"`
	Quantity     *int            `gorm:"comment:购买数量(充值为空)"`
	CreatedAt    time.Time       `gorm:"index:idx_account_time;comment:交易时间"`
}

// TableName 指定表名
func (LedgerEntryModel) TableName() string {
	return "ledger_entries"
}

// ReviewModel GORM评论模型
// 教学要点:
// 1. 匿名评论AccountID为NULL,ReviewerKey始终保存提交者账户ID
// 2. (book_id, reviewer_key)唯一索引保证每人每本书只能评论一次
type ReviewModel struct {
	ID          uint      `gorm:"primaryKey"`
	BookID      uint      `gorm:"uniqueIndex:idx_book_reviewer;not null;comment:图书ID"`
	ReviewerKey uint      `gorm:"uniqueIndex:idx_book_reviewer;not null;comment:提交者账户ID(指纹)"`
	AccountID   *uint     `gorm:"index;comment:作者账户ID(匿名为空)"`
	Score       int       `gorm:"type:tinyint;not null;comment:评分0-10"`
	Description string    `gorm:"size:500;comment:评论内容"`
	CreatedAt   time.Time `gorm:"comment:评论时间"`
}

// TableName 指定表名
func (ReviewModel) TableName() string {
	return "reviews"
}
