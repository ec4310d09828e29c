/**
 * 渗透会话仓库层:会话/结果/凭据数据访问
 * @author: sun977
 */
package repository

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"neoprobe/internal/model"
	"neoprobe/internal/pkg/logger"
)

// PentestRepository 渗透测试仓库接口定义
type PentestRepository interface {
	CreateSession(session *model.PentestSession) error
	GetSessionBySessionID(sessionID string) (*model.PentestSession, error)
	UpdateSessionStatus(sessionID string, status string, description string) error
	MarkSessionStarted(sessionID string) error
	MarkSessionFinished(sessionID string, status string, description string) error

	AddResult(result *model.PentestResult) error
	AddCredential(cred *model.DiscoveredCredential) error
	ListResultsBySession(sessionID string) ([]*model.PentestResult, error)
	ListCredentialsBySession(sessionID string) ([]*model.DiscoveredCredential, error)
}

type pentestRepository struct {
	db *gorm.DB
}

func NewPentestRepository(db *gorm.DB) PentestRepository {
	return &pentestRepository{db: db}
}

// CreateSession 创建渗透会话
func (r *pentestRepository) CreateSession(session *model.PentestSession) error {
	if err := r.db.Create(session).Error; err != nil {
		logger.Errorf("渗透会话创建失败 session_id=%s err=%v", session.SessionID, err)
		return err
	}
	return nil
}

// GetSessionBySessionID 根据业务ID获取会话，未找到返回 (nil, nil)
func (r *pentestRepository) GetSessionBySessionID(sessionID string) (*model.PentestSession, error) {
	var session model.PentestSession
	result := r.db.Where("session_id = ?", sessionID).First(&session)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &session, nil
}

// UpdateSessionStatus 更新会话状态，description 为空时不覆盖
func (r *pentestRepository) UpdateSessionStatus(sessionID string, status string, description string) error {
	updates := map[string]interface{}{"status": status}
	if description != "" {
		updates["description"] = description
	}

	result := r.db.Model(&model.PentestSession{}).Where("session_id = ?", sessionID).Updates(updates)
	if result.Error != nil {
		logger.Errorf("会话状态更新失败 session_id=%s status=%s err=%v", sessionID, status, result.Error)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("渗透会话不存在: %s", sessionID)
	}
	return nil
}

// MarkSessionStarted 会话进入运行态并记录开始时间
func (r *pentestRepository) MarkSessionStarted(sessionID string) error {
	now := time.Now()
	return r.db.Model(&model.PentestSession{}).
		Where("session_id = ? AND status = ?", sessionID, model.SessionStatusCreated).
		Updates(map[string]interface{}{
			"status":     model.SessionStatusRunning,
			"started_at": &now,
		}).Error
}

// MarkSessionFinished 会话终态落库并记录结束时间
func (r *pentestRepository) MarkSessionFinished(sessionID string, status string, description string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"status":      status,
		"finished_at": &now,
	}
	if description != "" {
		updates["description"] = description
	}
	return r.db.Model(&model.PentestSession{}).Where("session_id = ?", sessionID).Updates(updates).Error
}

// AddResult 追加一条测试结论
func (r *pentestRepository) AddResult(result *model.PentestResult) error {
	if err := r.db.Create(result).Error; err != nil {
		logger.Errorf("测试结论写入失败 session_id=%s test=%s err=%v", result.SessionID, result.TestName, err)
		return err
	}
	return nil
}

// AddCredential 追加一条发现的凭据
func (r *pentestRepository) AddCredential(cred *model.DiscoveredCredential) error {
	if err := r.db.Create(cred).Error; err != nil {
		logger.Errorf("凭据写入失败 session_id=%s service=%s err=%v", cred.SessionID, cred.Service, err)
		return err
	}
	return nil
}

// ListResultsBySession 获取会话全部测试结论，按写入顺序
func (r *pentestRepository) ListResultsBySession(sessionID string) ([]*model.PentestResult, error) {
	var results []*model.PentestResult
	if err := r.db.Where("session_id = ?", sessionID).Order("id asc").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// ListCredentialsBySession 获取会话发现的全部凭据
func (r *pentestRepository) ListCredentialsBySession(sessionID string) ([]*model.DiscoveredCredential, error) {
	var creds []*model.DiscoveredCredential
	if err := r.db.Where("session_id = ?", sessionID).Order("id asc").Find(&creds).Error; err != nil {
		return nil, err
	}
	return creds, nil
}
