package store_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	st "github.com/gigflick/resume-analyzer/internal/store"
)

var _ = Describe("Store", Ordered, func() {
	var (
		store   st.Store
		gormDB  *gorm.DB
		cleanup func()
	)

	BeforeAll(func() {
		gormDB, cleanup = newTestDB()
		store = st.NewStore(gormDB)
		Expect(store).ToNot(BeNil())
	})

	AfterAll(func() {
		cleanup()
	})

	Context("transaction", func() {
		It("inserts an analysis successfully", func() {
			ctx, err := store.NewTransactionContext(context.TODO())
			Expect(err).To(BeNil())

			analysis, err := store.Analysis().Create(ctx, "resume.pdf", time.Now())
			Expect(err).To(BeNil())
			Expect(analysis).ToNot(BeNil())

			_, cerr := st.Commit(ctx)
			Expect(cerr).To(BeNil())

			count := 0
			err = gormDB.Raw("SELECT COUNT(*) from analyses;").Scan(&count).Error
			Expect(err).To(BeNil())
			Expect(count).To(Equal(1))
		})

		It("rolls back an analysis successfully", func() {
			ctx, err := store.NewTransactionContext(context.TODO())
			Expect(err).To(BeNil())

			analysis, err := store.Analysis().Create(ctx, "resume.pdf", time.Now())
			Expect(err).To(BeNil())

			// visible in the same transaction
			found, err := store.Analysis().Get(ctx, analysis.ID)
			Expect(err).To(BeNil())
			Expect(found.ID).To(Equal(analysis.ID))

			_, cerr := st.Rollback(ctx)
			Expect(cerr).To(BeNil())

			_, err = store.Analysis().Get(context.TODO(), analysis.ID)
			Expect(err).To(MatchError(st.ErrRecordNotFound))
		})

		It("joins the outer transaction on nested calls", func() {
			ctx, err := store.NewTransactionContext(context.TODO())
			Expect(err).To(BeNil())
			outer := st.FromContext(ctx)
			Expect(outer).NotTo(BeNil())

			nested, err := store.NewTransactionContext(ctx)
			Expect(err).To(BeNil())
			Expect(st.FromContext(nested)).To(BeIdenticalTo(outer))

			done, err := st.Rollback(nested)
			Expect(err).To(BeNil())
			Expect(st.FromContext(done)).To(BeNil())
		})

		It("treats ending a context without transaction as a no-op", func() {
			ctx, err := st.Commit(context.TODO())
			Expect(err).To(BeNil())
			Expect(st.FromContext(ctx)).To(BeNil())
		})

		It("pings the database", func() {
			Expect(store.Ping(context.TODO())).To(Succeed())
		})

		AfterEach(func() {
			gormDB.Exec("DELETE from analyses;")
		})
	})
})
