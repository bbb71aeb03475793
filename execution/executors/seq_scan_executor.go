package executors

import (
	"github.com/ymakino/TsubameDB/catalog"
	"github.com/ymakino/TsubameDB/execution/plans"
	"github.com/ymakino/TsubameDB/storage/page"
	"github.com/ymakino/TsubameDB/storage/tuple"
	"github.com/ymakino/TsubameDB/types"
)

// SeqScanExecutor walks every heap page of a table in ascending page
// and slot order, which yields rows in insertion order.
type SeqScanExecutor struct {
	context       *ExecutorContext
	plan          *plans.SeqScanPlanNode
	tableMetadata *catalog.TableMetadata
	pageCount     int32
	currentPageID types.PageID
	currentPage   *page.HeapPage
	liveSlots     []uint32
	slotPos       int
}

func NewSeqScanExecutor(context *ExecutorContext, plan *plans.SeqScanPlanNode) *SeqScanExecutor {
	return &SeqScanExecutor{context: context, plan: plan}
}

func (e *SeqScanExecutor) Init() error {
	tableMetadata, err := e.context.GetCatalog().GetTableByName(e.plan.GetTableName())
	if err != nil {
		return err
	}
	pageCount, err := e.context.GetStorageManager().PageCount(e.plan.GetTableName())
	if err != nil {
		return err
	}
	e.tableMetadata = tableMetadata
	e.pageCount = pageCount
	e.currentPageID = 0
	e.currentPage = nil
	return nil
}

func (e *SeqScanExecutor) Next() (*Row, error) {
	for {
		if e.currentPage == nil {
			if e.currentPageID >= types.PageID(e.pageCount) {
				return nil, nil
			}
			heapPage, err := e.context.GetStorageManager().FetchHeapPage(e.plan.GetTableName(), e.currentPageID)
			if err != nil {
				return nil, err
			}
			e.currentPage = heapPage
			e.liveSlots = heapPage.LiveSlotIds()
			e.slotPos = 0
		}
		if e.slotPos >= len(e.liveSlots) {
			e.currentPage = nil
			e.currentPageID++
			continue
		}

		slotNum := e.liveSlots[e.slotPos]
		e.slotPos++
		record, err := e.currentPage.Read(slotNum)
		if err != nil {
			continue
		}
		rid := page.NewRID(e.currentPageID, slotNum)
		values, err := tuple.NewTuple(rid, record).GetValues(e.tableMetadata.Schema())
		if err != nil {
			// a truncated tail page ends the scan with what was read
			return nil, nil
		}
		return NewRow(values, rid, e.tableMetadata.Schema()), nil
	}
}

func (e *SeqScanExecutor) Close() {}
