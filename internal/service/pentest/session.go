/**
 * 渗透会话服务:会话生命周期与目标派发
 * @author: sun977
 * @description: created -> running -> {completed | failed | cancelled}
 * 目标间并发探测；每派发一个新目标前检查取消标记(协作式取消，在途探测不打断)
 */
package pentest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"neoprobe/internal/core/brute"
	"neoprobe/internal/core/webvuln"
	"neoprobe/internal/model"
	"neoprobe/internal/pkg/logger"
	"neoprobe/internal/pkg/utils"
	"neoprobe/internal/repository"
)

var (
	// ErrBatchNotReady 批次不存在或尚未完成，不能发起渗透会话
	ErrBatchNotReady = errors.New("批次不存在或未完成")
	// ErrSessionNotFound 会话不存在
	ErrSessionNotFound = errors.New("渗透会话不存在")
	// ErrSessionNotCancellable 会话已进入终态，无法取消
	ErrSessionNotCancellable = errors.New("会话已结束，无法取消")
	// ErrTargetNotOnline 指定的目标不是该批次的在线主机
	ErrTargetNotOnline = errors.New("目标不在批次的在线主机列表中")
)

// BruteProber 弱口令爆破接口
type BruteProber interface {
	Run(ctx context.Context, ip string) (*brute.Report, error)
}

// WebProber Web漏洞探测接口
type WebProber interface {
	Scan(ctx context.Context, ip string) []webvuln.Finding
}

// SessionReport 会话查询结果
type SessionReport struct {
	Session     *model.PentestSession         `json:"session"`
	Results     []*model.PentestResult        `json:"results"`
	Credentials []*model.DiscoveredCredential `json:"credentials"`
}

// Service 渗透会话服务
type Service struct {
	repo      repository.PentestRepository
	batchRepo repository.BatchRepository
	taskRepo  repository.ScanTaskRepository
	brute     BruteProber
	web       WebProber

	// 单会话内同时探测的目标数上限
	targetParallel int
}

func NewService(
	repo repository.PentestRepository,
	batchRepo repository.BatchRepository,
	taskRepo repository.ScanTaskRepository,
	bruteProber BruteProber,
	webProber WebProber,
) *Service {
	return &Service{
		repo:           repo,
		batchRepo:      batchRepo,
		taskRepo:       taskRepo,
		brute:          bruteProber,
		web:            webProber,
		targetParallel: 5,
	}
}

// CreateSession 从已完成批次的在线主机创建渗透会话
// 只有 completed 状态的批次才能作为目标来源
// targetIPs 是操作员选取的目标子集，逐个校验必须是该批次的在线主机；
// 为空时默认选取批次全部在线主机
func (s *Service) CreateSession(ctx context.Context, batchID string, description string, targetIPs []string) (*model.PentestSession, error) {
	batch, err := s.batchRepo.GetByBatchID(batchID)
	if err != nil {
		return nil, err
	}
	if batch == nil || batch.Status != model.BatchStatusCompleted {
		return nil, ErrBatchNotReady
	}

	tasks, err := s.taskRepo.ListByBatch(batchID)
	if err != nil {
		return nil, err
	}

	online := make(map[string]struct{})
	var targets model.StringList
	for _, t := range tasks {
		if t.IsOnline {
			online[t.IPAddress] = struct{}{}
			targets = append(targets, t.IPAddress)
		}
	}

	if len(targetIPs) > 0 {
		selected := make(model.StringList, 0, len(targetIPs))
		for _, raw := range targetIPs {
			ip := utils.NormalizeIP(raw)
			if _, ok := online[ip]; !ok {
				return nil, fmt.Errorf("%w: %s", ErrTargetNotOnline, raw)
			}
			selected = append(selected, ip)
		}
		targets = selected
	}

	session := &model.PentestSession{
		SessionID:   utils.MustUUID(),
		BatchID:     batchID,
		TargetIPs:   targets,
		Status:      model.SessionStatusCreated,
		Description: description,
	}
	if err := s.repo.CreateSession(session); err != nil {
		return nil, err
	}

	logger.Infof("渗透会话创建完成 session_id=%s batch_id=%s targets=%d", session.SessionID, batchID, len(targets))
	return session, nil
}

// Run 执行渗透会话
// 每派发一个新目标前重读会话状态，发现取消标记就停止派发
// 在途目标的探测会跑完，其结果仍然落库
func (s *Service) Run(ctx context.Context, sessionID string) error {
	session, err := s.repo.GetSessionBySessionID(sessionID)
	if err != nil {
		return err
	}
	if session == nil {
		return ErrSessionNotFound
	}
	if session.Status != model.SessionStatusCreated {
		return fmt.Errorf("会话状态不允许执行: %s", session.Status)
	}

	if err := s.repo.MarkSessionStarted(sessionID); err != nil {
		return err
	}

	var (
		wg       sync.WaitGroup
		sem      = make(chan struct{}, s.targetParallel)
		mu       sync.Mutex
		fatalErr error
	)

	setFatal := func(err error) {
		mu.Lock()
		if fatalErr == nil {
			fatalErr = err
		}
		mu.Unlock()
	}

	cancelled := false
	for _, target := range session.TargetIPs {
		// 协作式取消检查点
		current, err := s.repo.GetSessionBySessionID(sessionID)
		if err != nil {
			setFatal(err)
			break
		}
		if current != nil && current.Status == model.SessionStatusCancelled {
			cancelled = true
			break
		}

		mu.Lock()
		stop := fatalErr != nil
		mu.Unlock()
		if stop {
			break
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(ip string) {
			defer wg.Done()
			defer func() { <-sem }()

			if err := s.probeTarget(ctx, sessionID, ip); err != nil {
				setFatal(err)
			}
		}(target)
	}
	wg.Wait()

	if cancelled {
		if err := s.repo.MarkSessionFinished(sessionID, model.SessionStatusCancelled, ""); err != nil {
			return err
		}
		logger.Infof("渗透会话已取消 session_id=%s", sessionID)
		return nil
	}

	if fatalErr != nil {
		if err := s.repo.MarkSessionFinished(sessionID, model.SessionStatusFailed, fatalErr.Error()); err != nil {
			logger.Errorf("会话失败状态写入失败 session_id=%s err=%v", sessionID, err)
		}
		logger.Errorf("渗透会话失败 session_id=%s err=%v", sessionID, fatalErr)
		return fatalErr
	}

	if err := s.repo.MarkSessionFinished(sessionID, model.SessionStatusCompleted, ""); err != nil {
		return err
	}
	logger.Infof("渗透会话完成 session_id=%s targets=%d", sessionID, len(session.TargetIPs))
	return nil
}

// probeTarget 对单目标执行爆破和Web漏洞两类探测并落库
// 能力缺失和落库失败是致命错误，向上冒泡判会话失败
func (s *Service) probeTarget(ctx context.Context, sessionID, ip string) error {
	report, err := s.brute.Run(ctx, ip)
	if err != nil {
		return fmt.Errorf("目标 %s 爆破探测失败: %w", ip, err)
	}

	now := time.Now()
	for _, cred := range report.Credentials {
		record := &model.DiscoveredCredential{
			SessionID:    sessionID,
			IPAddress:    ip,
			Service:      cred.Service,
			Port:         cred.Port,
			Username:     cred.Username,
			Password:     cred.Password,
			AccessLevel:  cred.AccessLevel,
			Verified:     true,
			DiscoveredAt: now,
		}
		if err := s.repo.AddCredential(record); err != nil {
			return fmt.Errorf("目标 %s 凭据落库失败: %w", ip, err)
		}
	}
	for _, f := range report.Findings {
		result := &model.PentestResult{
			SessionID:   sessionID,
			IPAddress:   ip,
			ModuleType:  model.ModuleBruteForce,
			TestName:    f.TestName,
			Severity:    f.Severity,
			Description: f.TestName + " vulnerability found",
			Details:     model.DetailMap(f.Details),
			TestedAt:    now,
		}
		if err := s.repo.AddResult(result); err != nil {
			return fmt.Errorf("目标 %s 爆破结论落库失败: %w", ip, err)
		}
	}

	// Web探测内部把网络错误消化为"无结论"，不会返回错误
	webFindings := s.web.Scan(ctx, ip)
	testedAt := time.Now()
	for _, f := range webFindings {
		result := &model.PentestResult{
			SessionID:   sessionID,
			IPAddress:   ip,
			ModuleType:  model.ModuleWebVuln,
			TestName:    f.TestName,
			Severity:    f.Severity,
			Description: f.TestName + " vulnerability found",
			Details:     model.DetailMap(f.Details),
			TestedAt:    testedAt,
		}
		if err := s.repo.AddResult(result); err != nil {
			return fmt.Errorf("目标 %s Web结论落库失败: %w", ip, err)
		}
	}

	return nil
}

// Cancel 取消会话，只有未结束的会话可以取消
func (s *Service) Cancel(ctx context.Context, sessionID string) error {
	session, err := s.repo.GetSessionBySessionID(sessionID)
	if err != nil {
		return err
	}
	if session == nil {
		return ErrSessionNotFound
	}
	if session.Status != model.SessionStatusCreated && session.Status != model.SessionStatusRunning {
		return ErrSessionNotCancellable
	}

	if err := s.repo.UpdateSessionStatus(sessionID, model.SessionStatusCancelled, ""); err != nil {
		return err
	}
	logger.Infof("渗透会话取消标记已写入 session_id=%s", sessionID)
	return nil
}

// Report 查询会话及其全部结论与凭据
func (s *Service) Report(ctx context.Context, sessionID string) (*SessionReport, error) {
	session, err := s.repo.GetSessionBySessionID(sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	results, err := s.repo.ListResultsBySession(sessionID)
	if err != nil {
		return nil, err
	}
	creds, err := s.repo.ListCredentialsBySession(sessionID)
	if err != nil {
		return nil, err
	}

	return &SessionReport{
		Session:     session,
		Results:     results,
		Credentials: creds,
	}, nil
}
