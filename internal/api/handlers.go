package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/roach88/invoicer/internal/aggregate"
	"github.com/roach88/invoicer/internal/model"
	"github.com/roach88/invoicer/internal/parse"
	"github.com/roach88/invoicer/internal/render"
	"github.com/roach88/invoicer/internal/store"
)

func (s *Server) listInvoices(c *gin.Context) {
	filter := aggregate.AllInvoices()
	num, month := c.Query("num"), c.Query("month")

	switch {
	case num != "" && month != "":
		badRequest(c, errors.New("num and month are mutually exclusive"))
		return
	case num != "":
		n, err := strconv.ParseInt(num, 10, 64)
		if err != nil {
			badRequest(c, fmt.Errorf("invalid num %q", num))
			return
		}
		filter = aggregate.InvoiceByNumber(n)
	case month != "":
		m, err := parse.Month(month)
		if err != nil {
			badRequest(c, err)
			return
		}
		filter = aggregate.InvoiceByMonth(m)
	}

	var docs []model.InvoiceDocument
	err := s.store.Read(c.Request.Context(), func(r *store.Reader) error {
		var err error
		docs, err = aggregate.BuildInvoiceDocuments(c.Request.Context(), r, filter)
		return err
	})
	if err != nil {
		serverError(c, err)
		return
	}

	c.JSON(http.StatusOK, docs)
}

func (s *Server) getInvoice(c *gin.Context) {
	doc, ok := s.oneInvoice(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (s *Server) getTimesheet(c *gin.Context) {
	doc, ok := s.oneInvoice(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := render.WriteTimesheet(&buf, aggregate.Timesheet(doc)); err != nil {
		serverError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, render.TimesheetFilename(doc.Invoice)))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// oneInvoice applies the uniqueness contract to the :num parameter and
// writes the error response itself when it fails.
func (s *Server) oneInvoice(c *gin.Context) (model.InvoiceDocument, bool) {
	n, err := strconv.ParseInt(c.Param("num"), 10, 64)
	if err != nil {
		badRequest(c, fmt.Errorf("invalid invoice number %q", c.Param("num")))
		return model.InvoiceDocument{}, false
	}

	filter := aggregate.InvoiceByNumber(n)
	var doc model.InvoiceDocument
	err = s.store.Read(c.Request.Context(), func(r *store.Reader) error {
		docs, err := aggregate.BuildInvoiceDocuments(c.Request.Context(), r, filter)
		if err != nil {
			return err
		}
		doc, err = aggregate.ExactlyOne("invoice", filter, docs)
		return err
	})

	var idErr *aggregate.IdentificationError
	switch {
	case err == nil:
		return doc, true
	case errors.As(err, &idErr) && idErr.Count == 0:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &idErr):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		serverError(c, err)
	}
	return model.InvoiceDocument{}, false
}

func (s *Server) listActivities(c *gin.Context) {
	filter := aggregate.AllActivities()
	invoice, month := c.Query("invoice"), c.Query("month")

	switch {
	case invoice != "" && month != "":
		badRequest(c, errors.New("invoice and month are mutually exclusive"))
		return
	case invoice != "":
		n, err := strconv.ParseInt(invoice, 10, 64)
		if err != nil {
			badRequest(c, fmt.Errorf("invalid invoice %q", invoice))
			return
		}
		filter = aggregate.ActivitiesOfInvoice(n)
	case month != "":
		m, err := parse.Month(month)
		if err != nil {
			badRequest(c, err)
			return
		}
		filter = aggregate.ActivitiesInMonth(m)
	}

	var acts []model.ActivityWithRollup
	err := s.store.Read(c.Request.Context(), func(r *store.Reader) error {
		var err error
		acts, err = aggregate.BuildActivityRollups(c.Request.Context(), r, filter)
		return err
	})
	if err != nil {
		serverError(c, err)
		return
	}

	c.JSON(http.StatusOK, acts)
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func serverError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
