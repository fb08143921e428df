// Package objectstore uploads recipe images and hands out their public URLs.
// Three drivers implement backend.Storage: S3 (AWS or MinIO), Cloudinary and
// a plain HTTP object API.
package objectstore
