// Package pipeline coordinates a single document's journey: read, classify,
// extract, normalize, deduplicate and persist. PDF and spreadsheet inputs
// share the same entry point; the processor picks the route by extension.
package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/DAN-MYK/Deb/constants"
	"github.com/DAN-MYK/Deb/internal/act"
	"github.com/DAN-MYK/Deb/internal/bank"
	"github.com/DAN-MYK/Deb/internal/common"
	"github.com/DAN-MYK/Deb/internal/entity"
	"github.com/DAN-MYK/Deb/internal/normalize"
	"github.com/DAN-MYK/Deb/internal/pdfdoc"
	"github.com/DAN-MYK/Deb/internal/repository"
)

// Result summarizes what one ProcessFile call did.
type Result struct {
	Path      string            `json:"path"`
	DocType   constants.DocType `json:"doc_type"`
	Acts      int               `json:"acts"`
	Payments  int               `json:"payments"`
	Duplicate bool              `json:"duplicate,omitempty"`
}

// Processor wires the extractors to the persistence layer.
type Processor struct {
	cfg        *common.Config
	reader     *pdfdoc.Reader
	classifier *pdfdoc.Classifier
	acts       *act.Extractor
	blocks     *bank.BlockExtractor
	rows       *bank.RowExtractor
	registry   *bank.Registry
	actRepo    repository.ActRepository
	payRepo    repository.PaymentRepository
	logger     *slog.Logger
}

func NewProcessor(
	cfg *common.Config,
	reader *pdfdoc.Reader,
	registry *bank.Registry,
	actRepo repository.ActRepository,
	payRepo repository.PaymentRepository,
	logger *slog.Logger,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		cfg:        cfg,
		reader:     reader,
		classifier: pdfdoc.NewClassifier(cfg.PDF),
		acts:       act.NewExtractor(reader, constants.DefaultEDRPOUCompanies, logger),
		blocks:     bank.NewBlockExtractor(logger),
		rows:       bank.NewRowExtractor(registry, logger),
		registry:   registry,
		actRepo:    actRepo,
		payRepo:    payRepo,
		logger:     logger,
	}
}

// ProcessFile ingests one document. Typed extraction failures are
// quarantined before being returned, so the offending file is available
// for offline diagnosis.
func (p *Processor) ProcessFile(ctx context.Context, path string) (*Result, error) {
	res, err := p.processFile(ctx, path)
	if err != nil {
		if ee, ok := common.AsExtractionError(err); ok {
			common.Preserve(ee, p.cfg.Data.QuarantineDir, p.logger)
		}
		return nil, err
	}
	return res, nil
}

func (p *Processor) processFile(ctx context.Context, path string) (*Result, error) {
	switch constants.MapExtToFormat(filepath.Ext(path)) {
	case constants.PDF:
		return p.processPDF(ctx, path)
	case constants.XLSX, constants.XLS:
		return p.processSpreadsheet(ctx, path)
	default:
		return nil, common.NewUnsupportedFormat(path, "непідтримуване розширення файлу")
	}
}

func (p *Processor) processPDF(ctx context.Context, path string) (*Result, error) {
	meta := p.fileMeta(path)

	text, err := p.reader.ExtractText(ctx, path, 0)
	if err != nil {
		return nil, err
	}

	docType, err := p.classifier.Classify(path, text)
	if err != nil {
		return nil, err
	}

	switch docType {
	case constants.DocTypeAct:
		return p.importAct(ctx, path, meta)
	case constants.DocTypeBankStatement:
		return p.importStatementText(ctx, path, text, meta)
	default:
		return nil, common.NewUnsupportedFormat(path, "не вдалося визначити тип документа")
	}
}

func (p *Processor) importAct(ctx context.Context, path string, meta repository.FileMeta) (*Result, error) {
	dup, err := p.actRepo.ExistsBySource(ctx, meta)
	if err != nil {
		return nil, err
	}
	if dup {
		p.logger.Info("skipping duplicate act", "path", path)
		return &Result{Path: path, DocType: constants.DocTypeAct, Duplicate: true}, nil
	}

	rec, err := p.acts.Extract(ctx, path)
	if err != nil {
		return nil, err
	}
	p.normalizeAct(rec)
	if err := p.validateAct(path, rec); err != nil {
		return nil, err
	}

	if _, err := p.actRepo.Create(ctx, rec, meta); err != nil {
		return nil, err
	}
	p.logger.Info("act stored",
		"path", path, "company", rec.Executor, "period", rec.Period, "amount", rec.Amount)
	return &Result{Path: path, DocType: constants.DocTypeAct, Acts: 1}, nil
}

func (p *Processor) importStatementText(ctx context.Context, path, text string, meta repository.FileMeta) (*Result, error) {
	dup, err := p.payRepo.ExistsBySource(ctx, meta)
	if err != nil {
		return nil, err
	}
	if dup {
		p.logger.Info("skipping duplicate statement", "path", path)
		return &Result{Path: path, DocType: constants.DocTypeBankStatement, Duplicate: true}, nil
	}

	records, err := p.blocks.Extract(path, text)
	if err != nil {
		return nil, err
	}
	return p.storePayments(ctx, path, records, meta)
}

func (p *Processor) storePayments(ctx context.Context, path string, records []entity.PaymentRecord, meta repository.FileMeta) (*Result, error) {
	for i := range records {
		p.normalizePayment(&records[i])
	}
	n, err := p.payRepo.CreateBatch(ctx, records, meta)
	if err != nil {
		return nil, err
	}
	p.logger.Info("payments stored", "path", path, "count", n)
	return &Result{Path: path, DocType: constants.DocTypeBankStatement, Payments: n}, nil
}

func (p *Processor) normalizeAct(rec *entity.ActRecord) {
	rec.Executor = normalize.Company(rec.Executor)
	rec.Customer = normalize.Company(rec.Customer)
	rec.Period = normalize.Period(rec.Period)
}

func (p *Processor) normalizePayment(rec *entity.PaymentRecord) {
	rec.Company = normalize.Company(rec.Company)
	rec.Counterparty = normalize.Company(rec.Counterparty)
	rec.Period = normalize.Period(rec.Period)
}

// validateAct applies the business checks the extractors deliberately do
// not: plausible amount and a resolved company.
func (p *Processor) validateAct(path string, rec *entity.ActRecord) error {
	if rec.Amount <= 0 || rec.Amount >= p.cfg.Data.AmountMax {
		return common.NewInvalidData(path, "сума акта поза допустимими межами", "amount")
	}
	if rec.Executor == constants.UnknownName {
		return common.NewInvalidData(path, "не вдалося визначити компанію", "company")
	}
	return nil
}

// fileMeta hashes the source for dedup; on failure the path alone still
// identifies the file.
func (p *Processor) fileMeta(path string) repository.FileMeta {
	meta, err := repository.HashFile(path)
	if err != nil {
		p.logger.Warn("failed to hash file, deduplicating by path", "path", path, "error", err)
		return repository.FileMeta{Path: path}
	}
	return meta
}
